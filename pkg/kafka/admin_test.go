package kafka

import (
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestTopicName(t *testing.T) {
	assert.Equal(t, "cmp1.docrepo", TopicName("cmp1", "docrepo"))
	assert.Equal(t, "docrepo", TopicName("", "docrepo"))
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		name        string
		topic       string
		compartment string
		stream      string
		wantComp    string
		wantName    string
		wantOK      bool
	}{
		{"exact", "cmp1.docrepo", "cmp1", "docrepo", "cmp1", "docrepo", true},
		{"other compartment", "cmp2.docrepo", "cmp1", "docrepo", "", "", false},
		{"other name", "cmp1.audit", "cmp1", "docrepo", "", "", false},
		{"compartment only", "cmp1.audit", "cmp1", "", "cmp1", "audit", true},
		{"compartment prefix mismatch", "cmp10.audit", "cmp1", "", "", "", false},
		{"unfiltered", "ocid1.compartment.oc1.docrepo", "", "", "ocid1.compartment.oc1", "docrepo", true},
		{"dotted compartment", "ocid1.compartment.oc1.docrepo", "ocid1.compartment.oc1", "docrepo", "ocid1.compartment.oc1", "docrepo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, name, ok := matchTopic(tt.topic, tt.compartment, tt.stream)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantComp, comp)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestLifecycleOf(t *testing.T) {
	withPartitions := []kafkago.Partition{{ID: 0}}

	assert.Equal(t, StateActive, lifecycleOf(kafkago.Topic{Name: "a", Partitions: withPartitions}))
	assert.Equal(t, StateCreating, lifecycleOf(kafkago.Topic{Name: "a"}))
	assert.Equal(t, StateCreating, lifecycleOf(kafkago.Topic{Name: "a", Error: kafkago.LeaderNotAvailable}))
	assert.Equal(t, StateFailed, lifecycleOf(kafkago.Topic{Name: "a", Error: kafkago.TopicAuthorizationFailed, Partitions: withPartitions}))
}

func TestMessagesEndpoint(t *testing.T) {
	a := &Admin{brokers: []string{"b1:9092", "b2:9092"}}

	endpoint := a.messagesEndpoint([]kafkago.Partition{
		{ID: 2, Leader: kafkago.Broker{Host: "b2", Port: 9092}},
		{ID: 0, Leader: kafkago.Broker{Host: "b1", Port: 9093}},
	})
	assert.Equal(t, "b1:9093", endpoint)

	assert.Equal(t, "b1:9092,b2:9092", a.messagesEndpoint(nil))
}

func TestCompressionFromString(t *testing.T) {
	assert.Equal(t, kafkago.Gzip, CompressionFromString("GZIP"))
	assert.Equal(t, kafkago.Zstd, CompressionFromString("zstd"))
	assert.Equal(t, kafkago.Snappy, CompressionFromString("bogus"))
	assert.Equal(t, kafkago.Compression(0), CompressionFromString("none"))
}

func TestDescribe(t *testing.T) {
	code, msg := describe(kafkago.MessageSizeTooLarge)
	assert.Equal(t, kafkago.MessageSizeTooLarge.Title(), code)
	assert.Equal(t, kafkago.MessageSizeTooLarge.Description(), msg)

	code, msg = describe(errors.New("boom"))
	assert.Equal(t, "ProduceError", code)
	assert.Equal(t, "boom", msg)
}
