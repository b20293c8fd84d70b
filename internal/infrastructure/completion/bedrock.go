package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/example/careslot/internal/domain/assistant"
	"github.com/example/careslot/internal/internaltypes"
)

type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Bedrock implements assistant.Completer with the Bedrock Converse API.
type Bedrock struct {
	api     converseAPI
	modelID string
}

func NewBedrock(ctx context.Context, region, modelID string) (*Bedrock, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("completion: load aws config: %w", err)
	}
	return newBedrock(bedrockruntime.NewFromConfig(cfg), modelID)
}

func newBedrock(api converseAPI, modelID string) (*Bedrock, error) {
	if api == nil {
		return nil, errors.New("completion: bedrock client is nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("completion: bedrock model id is required")
	}
	return &Bedrock{api: api, modelID: modelID}, nil
}

func (b *Bedrock) Name() string { return "bedrock" }

func (b *Bedrock) Complete(ctx context.Context, messages []assistant.Message, temperature float32) (string, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return "", errors.New("completion: bedrock requires at least one message")
	}

	var systemBlocks []brtypes.SystemContentBlock
	if system != "" {
		systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: system})
	}
	msgs := make([]brtypes.Message, 0, len(turns))
	for _, m := range turns {
		role := brtypes.ConversationRoleUser
		if m.Role == assistant.RoleAssistant {
			role = brtypes.ConversationRoleAssistant
		}
		msgs = append(msgs, brtypes.Message{
			Role:    role,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.Content}},
		})
	}

	out, err := b.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  aws.String(b.modelID),
		System:   systemBlocks,
		Messages: msgs,
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(800),
			Temperature: aws.Float32(temperature),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion: bedrock: %w: %w", internaltypes.ErrUnavailable, err)
	}

	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("completion: bedrock response did not include a message output")
	}
	var sb strings.Builder
	for _, block := range msgOut.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("completion: bedrock response contained no text")
	}
	return text, nil
}
