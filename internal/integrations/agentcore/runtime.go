package agentcore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
)

const maxResponseBytes = 1 << 20

// runtimeAPI is the minimal Bedrock AgentCore interface required by RuntimeInvoker.
// *bedrockagentcore.Client satisfies this interface.
type runtimeAPI interface {
	InvokeAgentRuntime(ctx context.Context, in *bedrockagentcore.InvokeAgentRuntimeInput, optFns ...func(*bedrockagentcore.Options)) (*bedrockagentcore.InvokeAgentRuntimeOutput, error)
}

// RuntimeInvoker calls a deployed AgentCore runtime.
type RuntimeInvoker struct {
	api        runtimeAPI
	runtimeARN string
}

func NewRuntimeInvoker(api runtimeAPI, runtimeARN string) (*RuntimeInvoker, error) {
	if api == nil {
		return nil, errors.New("agentcore: runtime api must not be nil")
	}
	runtimeARN = strings.TrimSpace(runtimeARN)
	if runtimeARN == "" {
		return nil, errors.New("agentcore: runtime ARN must not be empty")
	}
	return &RuntimeInvoker{api: api, runtimeARN: runtimeARN}, nil
}

func (r *RuntimeInvoker) Invoke(ctx context.Context, sessionID string, payload []byte) ([]byte, error) {
	out, err := r.api.InvokeAgentRuntime(ctx, &bedrockagentcore.InvokeAgentRuntimeInput{
		AgentRuntimeArn:  aws.String(r.runtimeARN),
		RuntimeSessionId: aws.String(sessionID),
		ContentType:      aws.String("application/json"),
		Accept:           aws.String("application/json"),
		Payload:          payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke agent runtime: %w", err)
	}
	if out == nil || out.Response == nil {
		return nil, errors.New("agent runtime returned an empty response")
	}
	defer func() { _ = out.Response.Close() }()

	buf, err := io.ReadAll(io.LimitReader(out.Response, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read agent runtime response: %w", err)
	}
	return buf, nil
}
