package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/tracer"
)

// BedrockConverseAPI is the subset of the Bedrock Runtime client used
// here, extracted for testing.
type BedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider implements domain.TextProvider via the Amazon Bedrock
// Converse API. Credentials come from the standard AWS chain, not from
// the secret resolver.
type BedrockProvider struct {
	name   string
	model  string
	client BedrockConverseAPI
	logger *slog.Logger
	policy resilient.Policy
}

// NewBedrockProvider creates a provider using the default AWS config
// chain for the configured region.
func NewBedrockProvider(ctx context.Context, cfg config.ProviderConfig, logger *slog.Logger) (*BedrockProvider, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &BedrockProvider{
		name:   cfg.Name,
		model:  cfg.Model,
		client: bedrockruntime.NewFromConfig(awsCfg),
		logger: logger,
		policy: resilient.Policy{Logger: logger},
	}, nil
}

// Generate implements domain.TextProvider.
func (p *BedrockProvider) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	ctx, span := tracer.StartSpan(ctx, "text.generate")
	defer span.End()

	result, err := resilient.Do(ctx, "llm.bedrock.generate", p.policy,
		func(ctx context.Context) (*domain.GenerateResult, error) {
			return p.generateOnce(ctx, req)
		})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	logGenerated(p.logger, p.name, result)
	return result, nil
}

func (p *BedrockProvider) generateOnce(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: req.Prompt},
				},
			},
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}
	inferCfg := &brtypes.InferenceConfiguration{}
	if req.MaxTokens > 0 {
		inferCfg.MaxTokens = aws.Int32(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		inferCfg.Temperature = aws.Float32(float32(req.Temperature))
	}
	input.InferenceConfig = inferCfg

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return nil, mapBedrockError(err)
	}

	result := &domain.GenerateResult{}
	if msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage); ok {
		for _, block := range msg.Value.Content {
			if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
				result.Text = text.Value
				break
			}
		}
	}

	usage := domain.Usage{}
	if out.Usage != nil {
		usage.InputTokens = int(aws.ToInt32(out.Usage.InputTokens))
		usage.OutputTokens = int(aws.ToInt32(out.Usage.OutputTokens))
	}
	result.Cost = CostFor("bedrock", model, usage)

	return result, nil
}

// mapBedrockError translates SDK errors into domain sentinels so the
// retry policy treats Bedrock like the HTTP providers.
func mapBedrockError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", domain.ErrProviderError, err)
	}

	switch apiErr.ErrorCode() {
	case "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException":
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, apiErr.ErrorMessage())
	case "ThrottlingException":
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, apiErr.ErrorMessage())
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrProviderError, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
}

// Name implements domain.TextProvider.
func (p *BedrockProvider) Name() string { return p.name }

// Configured implements domain.TextProvider. The AWS credential chain
// is resolved lazily, so a constructed provider counts as configured.
func (p *BedrockProvider) Configured() bool { return p.client != nil }
