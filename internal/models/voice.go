package models

// TranscriptEvent is pushed to voice relay clients for every recognition result.
type TranscriptEvent struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"is_final"`
	Audio      string `json:"audio,omitempty"`
}
