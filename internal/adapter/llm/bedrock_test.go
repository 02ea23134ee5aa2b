package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/domain"
)

type fakeConverse struct {
	fn    func(*bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error)
	calls int
}

func (f *fakeConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.calls++
	return f.fn(in)
}

func testBedrockProvider(client BedrockConverseAPI) *BedrockProvider {
	return &BedrockProvider{
		name:   "bedrock",
		model:  "anthropic.claude-3-haiku-20240307-v1:0",
		client: client,
		logger: newTestLogger(),
		policy: resilient.Policy{Backoff: time.Millisecond},
	}
}

func TestBedrockProviderGenerate(t *testing.T) {
	fake := &fakeConverse{fn: func(in *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		if aws.ToString(in.ModelId) != "anthropic.claude-3-haiku-20240307-v1:0" {
			t.Errorf("ModelId = %s", aws.ToString(in.ModelId))
		}
		return &bedrockruntime.ConverseOutput{
			Output: &brtypes.ConverseOutputMemberMessage{
				Value: brtypes.Message{
					Role: brtypes.ConversationRoleAssistant,
					Content: []brtypes.ContentBlock{
						&brtypes.ContentBlockMemberText{Value: "Bedrock says hi."},
					},
				},
			},
			Usage: &brtypes.TokenUsage{
				InputTokens:  aws.Int32(40),
				OutputTokens: aws.Int32(60),
			},
		}, nil
	}}

	provider := testBedrockProvider(fake)
	result, err := provider.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.Text != "Bedrock says hi." {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Cost.Usage.InputTokens != 40 || result.Cost.Usage.OutputTokens != 60 {
		t.Errorf("Usage = %+v", result.Cost.Usage)
	}
}

type fakeAPIError struct {
	code string
	msg  string
}

func (e *fakeAPIError) Error() string                 { return e.code + ": " + e.msg }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.msg }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestBedrockProviderAccessDeniedNoRetry(t *testing.T) {
	fake := &fakeConverse{fn: func(*bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		return nil, &fakeAPIError{code: "AccessDeniedException", msg: "no model access"}
	}}

	provider := testBedrockProvider(fake)
	_, err := provider.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})

	if !errors.Is(err, domain.ErrAuthInvalid) {
		t.Fatalf("err = %v, want ErrAuthInvalid", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1", fake.calls)
	}
}

func TestBedrockProviderThrottlingRetries(t *testing.T) {
	fake := &fakeConverse{fn: func(*bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		return nil, &fakeAPIError{code: "ThrottlingException", msg: "slow down"}
	}}

	provider := testBedrockProvider(fake)
	_, err := provider.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})

	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("err = %v, want ErrProviderError wrap", err)
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}
