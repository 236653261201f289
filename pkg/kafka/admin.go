package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// ErrStreamNotFound is returned by GetStream for unknown stream ids.
var ErrStreamNotFound = errors.New("stream not found")

// LifecycleState is the provisioning status of a stream.
type LifecycleState string

const (
	StateActive   LifecycleState = "ACTIVE"
	StateCreating LifecycleState = "CREATING"
	StateFailed   LifecycleState = "FAILED"
)

// StreamSummary describes a stream as seen through topic metadata.
// ID is the backing topic name.
type StreamSummary struct {
	ID               string
	Name             string
	CompartmentID    string
	LifecycleState   LifecycleState
	MessagesEndpoint string
	Partitions       int
}

// ListStreamsRequest filters ListStreams. Empty fields match everything.
type ListStreamsRequest struct {
	CompartmentID  string
	Name           string
	LifecycleState LifecycleState
}

type AdminConfig struct {
	Brokers     []string
	DialTimeout time.Duration
	ClientID    string
}

// Admin discovers streams. A stream named N in compartment C is backed by
// the topic "C.N"; streams outside any compartment use the bare name.
type Admin struct {
	client  *kafkago.Client
	brokers []string
}

// NewAdmin constructs an Admin from the given configuration.
func NewAdmin(cfg AdminConfig) *Admin {
	return &Admin{
		client: &kafkago.Client{
			Addr:    kafkago.TCP(cfg.Brokers...),
			Timeout: cfg.DialTimeout,
			Transport: &kafkago.Transport{
				DialTimeout: cfg.DialTimeout,
				ClientID:    cfg.ClientID,
			},
		},
		brokers: cfg.Brokers,
	}
}

// TopicName returns the topic backing a stream.
func TopicName(compartmentID, name string) string {
	if compartmentID == "" {
		return name
	}
	return compartmentID + "." + name
}

// ListStreams returns the streams matching req in metadata order.
// Topics that do not exist are never listed; nothing is created.
func (a *Admin) ListStreams(ctx context.Context, req ListStreamsRequest) ([]StreamSummary, error) {
	// a nil topic list asks for every topic and keeps brokers with
	// auto-create enabled from provisioning the stream as a side effect
	meta, err := a.client.Metadata(ctx, &kafkago.MetadataRequest{})
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}

	var out []StreamSummary
	for _, topic := range meta.Topics {
		if topic.Internal {
			continue
		}
		compartment, name, ok := matchTopic(topic.Name, req.CompartmentID, req.Name)
		if !ok {
			continue
		}
		summary := a.summarize(topic, compartment, name)
		if req.LifecycleState != "" && summary.LifecycleState != req.LifecycleState {
			continue
		}
		out = append(out, summary)
	}
	return out, nil
}

// GetStream resolves a stream id to its current descriptor.
func (a *Admin) GetStream(ctx context.Context, id string) (StreamSummary, error) {
	meta, err := a.client.Metadata(ctx, &kafkago.MetadataRequest{Topics: []string{id}})
	if err != nil {
		return StreamSummary{}, fmt.Errorf("get stream %s: %w", id, err)
	}
	for _, topic := range meta.Topics {
		if topic.Name != id {
			continue
		}
		if errors.Is(topic.Error, kafkago.UnknownTopicOrPartition) {
			break
		}
		compartment, name := splitTopic(topic.Name)
		return a.summarize(topic, compartment, name), nil
	}
	return StreamSummary{}, fmt.Errorf("get stream %s: %w", id, ErrStreamNotFound)
}

func (a *Admin) summarize(topic kafkago.Topic, compartment, name string) StreamSummary {
	return StreamSummary{
		ID:               topic.Name,
		Name:             name,
		CompartmentID:    compartment,
		LifecycleState:   lifecycleOf(topic),
		MessagesEndpoint: a.messagesEndpoint(topic.Partitions),
		Partitions:       len(topic.Partitions),
	}
}

func (a *Admin) messagesEndpoint(partitions []kafkago.Partition) string {
	if len(partitions) > 0 {
		sorted := append([]kafkago.Partition(nil), partitions...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
		leader := sorted[0].Leader
		if leader.Host != "" {
			return net.JoinHostPort(leader.Host, strconv.Itoa(leader.Port))
		}
	}
	return strings.Join(a.brokers, ",")
}

func lifecycleOf(topic kafkago.Topic) LifecycleState {
	switch {
	case topic.Error == nil && len(topic.Partitions) > 0:
		return StateActive
	case topic.Error == nil, errors.Is(topic.Error, kafkago.LeaderNotAvailable):
		return StateCreating
	default:
		return StateFailed
	}
}

func matchTopic(topic, compartmentID, name string) (string, string, bool) {
	if name != "" {
		if topic != TopicName(compartmentID, name) {
			return "", "", false
		}
		return compartmentID, name, true
	}
	if compartmentID == "" {
		c, n := splitTopic(topic)
		return c, n, true
	}
	rest, ok := strings.CutPrefix(topic, compartmentID+".")
	if !ok || rest == "" {
		return "", "", false
	}
	return compartmentID, rest, true
}

// splitTopic guesses the compartment from the last dot; compartment ids
// may themselves contain dots, stream names may not.
func splitTopic(topic string) (string, string) {
	idx := strings.LastIndex(topic, ".")
	if idx < 0 {
		return "", topic
	}
	return topic[:idx], topic[idx+1:]
}
