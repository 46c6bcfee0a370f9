package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// Synthesizer turns text into LINEAR16 audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VoiceConfig is the fixed language, voice and prosody of a synthesizer.
type VoiceConfig struct {
	LanguageCode    string
	VoiceName       string
	Gender          texttospeechpb.SsmlVoiceGender
	SampleRateHertz int32
	Pitch           float64
	SpeakingRate    float64
	EffectsProfiles []string
}

// ChatVoice is the voice used to read chat replies aloud.
func ChatVoice(language string, sampleRate int) VoiceConfig {
	return VoiceConfig{
		LanguageCode:    language,
		VoiceName:       "ja-JP-Neural2-D",
		SampleRateHertz: int32(sampleRate),
		Pitch:           -8.0,
		SpeakingRate:    1.3,
		EffectsProfiles: []string{"small-bluetooth-speaker-class-device"},
	}
}

// RelayVoice is the voice used to echo final transcripts on the voice relay.
func RelayVoice(language string, sampleRate int) VoiceConfig {
	return VoiceConfig{
		LanguageCode:    language,
		VoiceName:       "ja-JP-Standard-C",
		Gender:          texttospeechpb.SsmlVoiceGender_NEUTRAL,
		SampleRateHertz: int32(sampleRate),
	}
}

type GoogleSynthesizer struct {
	client *texttospeech.Client
	voice  VoiceConfig
}

func NewGoogleSynthesizer(ctx context.Context, voice VoiceConfig, opts ...option.ClientOption) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Text-to-Speech client: %w", err)
	}
	return &GoogleSynthesizer{client: client, voice: voice}, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.SynthesizeSpeech(ctx, synthesisRequest(text, s.voice))
	if err != nil {
		return nil, fmt.Errorf("Text-to-Speech error: %w", err)
	}
	return resp.AudioContent, nil
}

func synthesisRequest(text string, voice VoiceConfig) *texttospeechpb.SynthesizeSpeechRequest {
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.VoiceName,
			SsmlGender:   voice.Gender,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:    texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz:  voice.SampleRateHertz,
			Pitch:            voice.Pitch,
			SpeakingRate:     voice.SpeakingRate,
			EffectsProfileId: voice.EffectsProfiles,
		},
	}
}

// SpeakBase64 synthesizes text and returns it base64 encoded. Any failure,
// including a synthesizer that never initialized, yields an empty string.
func SpeakBase64(ctx context.Context, synth Synthesizer, text string) Outcome[string] {
	if synth == nil {
		return fellBack("", errors.New("speech synthesis not initialized"))
	}

	audio, err := synth.Synthesize(ctx, text)
	if err != nil {
		log.Printf("Error in speech generation: %v", err)
		return fellBack("", err)
	}
	return succeeded(base64.StdEncoding.EncodeToString(audio))
}
