package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_Flat(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"namespace":"ns1","bucketName":"in-bkt","resourceName":"doc1.txt","compartmentId":"cmp1"}`))
	require.NoError(t, err)
	assert.Equal(t, scenarioEvent, ev)
	assert.NoError(t, ev.Validate())
}

func TestDecodeEvent_CloudEvent(t *testing.T) {
	raw := `{
		"eventType": "com.oraclecloud.objectstorage.createobject",
		"cloudEventsVersion": "0.1",
		"eventID": "unique-id",
		"data": {
			"compartmentId": "cmp1",
			"resourceName": "doc1.txt",
			"additionalDetails": {"namespace": "ns1", "bucketName": "in-bkt"}
		}
	}`

	ev, err := DecodeEvent([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, scenarioEvent, ev)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("  "))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestIngestionEvent_Validate(t *testing.T) {
	err := IngestionEvent{CompartmentID: "cmp1"}.Validate()
	require.Error(t, err)
	assert.Equal(t, "event missing namespace, bucketName, resourceName", err.Error())

	assert.NoError(t, IngestionEvent{Namespace: "n", BucketName: "b", ResourceName: "r"}.Validate())
}
