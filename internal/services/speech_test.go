package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

func TestSpeakBase64(t *testing.T) {
	synth := &stubSynthesizer{audio: []byte{0x52, 0x49, 0x46, 0x46, 0x00}}

	got := SpeakBase64(context.Background(), synth, "やあ")
	if got.Fallback {
		t.Fatalf("unexpected fallback: %v", got.Err)
	}
	decoded, err := base64.StdEncoding.DecodeString(got.Value)
	if err != nil || string(decoded) != string(synth.audio) {
		t.Fatalf("audio did not round trip: %v", err)
	}
}

func TestSpeakBase64_Failures(t *testing.T) {
	tests := []struct {
		name  string
		synth Synthesizer
	}{
		{"not initialized", nil},
		{"synthesis error", &stubSynthesizer{err: errors.New("permission denied")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SpeakBase64(context.Background(), tc.synth, "text")
			if got.Value != "" || !got.Fallback || got.Err == nil {
				t.Fatalf("expected empty fallback, got %+v", got)
			}
		})
	}
}

func TestSynthesisRequest_ChatVoice(t *testing.T) {
	req := synthesisRequest("こんにちは", ChatVoice("ja-JP", 16000))

	if req.GetInput().GetText() != "こんにちは" {
		t.Errorf("unexpected input %q", req.GetInput().GetText())
	}
	if req.GetVoice().GetName() != "ja-JP-Neural2-D" || req.GetVoice().GetLanguageCode() != "ja-JP" {
		t.Errorf("unexpected voice %+v", req.GetVoice())
	}
	audio := req.GetAudioConfig()
	if audio.GetAudioEncoding() != texttospeechpb.AudioEncoding_LINEAR16 {
		t.Errorf("expected LINEAR16, got %v", audio.GetAudioEncoding())
	}
	if audio.GetPitch() != -8.0 || audio.GetSpeakingRate() != 1.3 || audio.GetSampleRateHertz() != 16000 {
		t.Errorf("unexpected prosody %+v", audio)
	}
	if len(audio.GetEffectsProfileId()) != 1 || audio.GetEffectsProfileId()[0] != "small-bluetooth-speaker-class-device" {
		t.Errorf("unexpected effects profile %v", audio.GetEffectsProfileId())
	}
}

func TestSynthesisRequest_RelayVoice(t *testing.T) {
	req := synthesisRequest("テスト", RelayVoice("ja-JP", 16000))

	if req.GetVoice().GetName() != "ja-JP-Standard-C" {
		t.Errorf("unexpected voice %q", req.GetVoice().GetName())
	}
	if req.GetVoice().GetSsmlGender() != texttospeechpb.SsmlVoiceGender_NEUTRAL {
		t.Errorf("expected neutral gender, got %v", req.GetVoice().GetSsmlGender())
	}
	if req.GetAudioConfig().GetSampleRateHertz() != 16000 {
		t.Errorf("expected 16kHz output, got %d", req.GetAudioConfig().GetSampleRateHertz())
	}
}

func TestStreamingConfig(t *testing.T) {
	cfg := streamingConfig("ja-JP", 16000)

	if !cfg.GetInterimResults() {
		t.Error("expected interim results")
	}
	rc := cfg.GetConfig()
	if rc.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 || rc.GetSampleRateHertz() != 16000 ||
		rc.GetLanguageCode() != "ja-JP" || rc.GetMaxAlternatives() != 1 {
		t.Errorf("unexpected recognition config %+v", rc)
	}
}

func TestFirstTranscript(t *testing.T) {
	tests := []struct {
		name string
		resp *speechpb.StreamingRecognizeResponse
		want Transcript
		ok   bool
	}{
		{"no results", &speechpb.StreamingRecognizeResponse{}, Transcript{}, false},
		{
			"no alternatives",
			&speechpb.StreamingRecognizeResponse{Results: []*speechpb.StreamingRecognitionResult{{}}},
			Transcript{}, false,
		},
		{
			"interim",
			&speechpb.StreamingRecognizeResponse{Results: []*speechpb.StreamingRecognitionResult{{
				Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "こんに"}},
			}}},
			Transcript{Text: "こんに"}, true,
		},
		{
			"final uses first result only",
			&speechpb.StreamingRecognizeResponse{Results: []*speechpb.StreamingRecognitionResult{
				{IsFinal: true, Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "こんにちは"}}},
				{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "ignored"}}},
			}},
			Transcript{Text: "こんにちは", IsFinal: true}, true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := firstTranscript(tc.resp)
			if ok != tc.ok || got != tc.want {
				t.Errorf("firstTranscript() = %+v, %v; want %+v, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}
