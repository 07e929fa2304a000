// internal/workers/infrastructure/build-response/models.go
package buildresponse

type Input struct {
	ActivityID string                 `json:"activityId"`
	RequestID  string                 `json:"requestId,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

type ResponsePayload struct {
	RequestID string                 `json:"requestId"`
	Status    string                 `json:"status"` // "success" or "error"
	Activity  string                 `json:"activity"`
	Data      map[string]interface{} `json:"data"`
	Metadata  ResponseMetadata       `json:"metadata"`
}

type ResponseMetadata struct {
	Timestamp string `json:"timestamp"` // ISO 8601
	Version   string `json:"version"`
}
