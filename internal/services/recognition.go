package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// Transcript is one recognition result, interim or final.
type Transcript struct {
	Text    string
	IsFinal bool
}

// Recognizer submits a batch of raw LINEAR16 chunks as one streaming
// recognition request and calls emit for every result it yields.
type Recognizer interface {
	Recognize(ctx context.Context, chunks [][]byte, emit func(Transcript) error) error
}

type GoogleRecognizer struct {
	client *speech.Client
	config *speechpb.StreamingRecognitionConfig
}

func NewGoogleRecognizer(ctx context.Context, language string, sampleRate int, opts ...option.ClientOption) (*GoogleRecognizer, error) {
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Speech client: %w", err)
	}
	return &GoogleRecognizer{
		client: client,
		config: streamingConfig(language, sampleRate),
	}, nil
}

func streamingConfig(language string, sampleRate int) *speechpb.StreamingRecognitionConfig {
	return &speechpb.StreamingRecognitionConfig{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    language,
			MaxAlternatives: 1,
		},
		InterimResults: true,
	}
}

func (r *GoogleRecognizer) Close() error {
	return r.client.Close()
}

func (r *GoogleRecognizer) Recognize(ctx context.Context, chunks [][]byte, emit func(Transcript) error) error {
	stream, err := r.client.StreamingRecognize(ctx)
	if err != nil {
		return fmt.Errorf("failed to open recognition stream: %w", err)
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{StreamingConfig: r.config},
	}); err != nil {
		return fmt.Errorf("failed to send recognition config: %w", err)
	}

	for _, chunk := range chunks {
		if err := stream.Send(&speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
		}); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}
	}

	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("failed to close recognition stream: %w", err)
	}

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("recognition stream error: %w", err)
		}
		if resp.Error != nil {
			return fmt.Errorf("recognition failed: %s", resp.Error.GetMessage())
		}

		transcript, ok := firstTranscript(resp)
		if !ok {
			continue
		}
		if err := emit(transcript); err != nil {
			return err
		}
	}
}

// firstTranscript extracts the top alternative of the first result, the only
// one relayed to clients.
func firstTranscript(resp *speechpb.StreamingRecognizeResponse) (Transcript, bool) {
	if len(resp.GetResults()) == 0 {
		return Transcript{}, false
	}
	result := resp.GetResults()[0]
	if len(result.GetAlternatives()) == 0 {
		return Transcript{}, false
	}
	return Transcript{
		Text:    result.GetAlternatives()[0].GetTranscript(),
		IsFinal: result.GetIsFinal(),
	}, true
}
