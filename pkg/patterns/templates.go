package patterns

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/jaeyo/go-drain3/pkg/drain3"

	"github.com/logsift/logsift/pkg/classify"
)

// Template is a recurring message template mined from a batch.
type Template struct {
	ID      uuid.UUID `json:"id"`
	Pattern string    `json:"pattern"`
	Count   int       `json:"count"`
}

// TemplateMiner discovers recurring message templates using the Drain
// algorithm. It complements the regex extractors: Drain generalizes the
// variable parts of similar messages into wildcards.
type TemplateMiner struct {
	mu    sync.Mutex
	drain *drain3.Drain
	// clusterUUIDs maps Drain cluster IDs to stable UUIDs for consistent
	// template identification.
	clusterUUIDs map[int64]uuid.UUID
}

// NewTemplateMiner creates a TemplateMiner with default Drain parameters.
func NewTemplateMiner() (*TemplateMiner, error) {
	d, err := drain3.NewDrain(
		drain3.WithDepth(4),
		drain3.WithSimTh(0.4),
		drain3.WithExtraDelimiter([]string{"|", "=", ","}),
	)
	if err != nil {
		return nil, errors.Errorf("create drain: %w", err)
	}
	return &TemplateMiner{
		drain:        d,
		clusterUUIDs: make(map[int64]uuid.UUID),
	}, nil
}

// Feed processes a batch of messages through the Drain algorithm.
func (m *TemplateMiner) Feed(messages []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range messages {
		cluster, _, err := m.drain.AddLogMessage(msg)
		if err != nil {
			return errors.Errorf("drain add: %w", err)
		}
		if cluster == nil {
			continue
		}
		if _, ok := m.clusterUUIDs[cluster.ClusterId]; !ok {
			m.clusterUUIDs[cluster.ClusterId] = uuid.New()
		}
	}
	return nil
}

// Templates returns all clusters discovered so far with their counts.
func (m *TemplateMiner) Templates() ([]Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clusters := m.drain.GetClusters()
	templates := make([]Template, 0, len(clusters))
	for _, c := range clusters {
		id, ok := m.clusterUUIDs[c.ClusterId]
		if !ok {
			continue
		}
		templates = append(templates, Template{
			ID:      id,
			Pattern: c.GetTemplate(),
			Count:   int(c.Size),
		})
	}
	return templates, nil
}

// MineTemplates runs Drain over the ERROR/WARNING messages of a batch and
// returns templates that matched at least two messages. A single-message
// cluster is just the literal text with no generalization, so it is dropped.
func MineTemplates(entries []classify.Entry) ([]Template, error) {
	miner, err := NewTemplateMiner()
	if err != nil {
		return nil, err
	}

	var messages []string
	for _, e := range filterErrorWarning(entries) {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	if err := miner.Feed(messages); err != nil {
		return nil, err
	}

	all, err := miner.Templates()
	if err != nil {
		return nil, err
	}
	templates := make([]Template, 0, len(all))
	for _, t := range all {
		if t.Count <= 1 {
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}
