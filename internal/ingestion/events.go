package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// IngestionEvent identifies a newly uploaded object. It is consumed once.
type IngestionEvent struct {
	Namespace     string `json:"namespace"`
	BucketName    string `json:"bucketName"`
	ResourceName  string `json:"resourceName"`
	CompartmentID string `json:"compartmentId"`
}

// Validate reports the fields required to locate the source object.
func (e IngestionEvent) Validate() error {
	var missing []string
	if e.Namespace == "" {
		missing = append(missing, "namespace")
	}
	if e.BucketName == "" {
		missing = append(missing, "bucketName")
	}
	if e.ResourceName == "" {
		missing = append(missing, "resourceName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("event missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// objectEvent is the cloud-event envelope emitted by object storage.
type objectEvent struct {
	EventType string `json:"eventType"`
	EventID   string `json:"eventID"`
	Data      *struct {
		CompartmentID     string `json:"compartmentId"`
		ResourceName      string `json:"resourceName"`
		AdditionalDetails struct {
			Namespace  string `json:"namespace"`
			BucketName string `json:"bucketName"`
		} `json:"additionalDetails"`
	} `json:"data"`
}

// DecodeEvent accepts either a flat IngestionEvent or the cloud-event envelope.
func DecodeEvent(data []byte) (IngestionEvent, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return IngestionEvent{}, errors.New("decode event: empty body")
	}

	var envelope objectEvent
	if err := json.Unmarshal(data, &envelope); err != nil {
		return IngestionEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if envelope.Data != nil {
		return IngestionEvent{
			Namespace:     envelope.Data.AdditionalDetails.Namespace,
			BucketName:    envelope.Data.AdditionalDetails.BucketName,
			ResourceName:  envelope.Data.ResourceName,
			CompartmentID: envelope.Data.CompartmentID,
		}, nil
	}

	var ev IngestionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return IngestionEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
