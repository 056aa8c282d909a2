package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// EventSource is the server-side event channel of one invocation.
// *bedrockagentruntime.InvokeAgentEventStream satisfies it.
type EventSource interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

// Response is the outcome of one InvokeAgent round trip. Events is nil when
// the service returned no event stream; Complete then carries whatever full
// reply text the response exposed (possibly empty).
type Response struct {
	Events   EventSource
	Complete string
}

// Transport performs the raw InvokeAgent call. It exists as a seam: the
// AWS-backed implementation is swapped for scripted ones in tests.
type Transport interface {
	Invoke(ctx context.Context, input *bedrockagentruntime.InvokeAgentInput) (Response, error)
}

type awsTransport struct {
	client *bedrockagentruntime.Client
}

// NewTransport builds the AWS-backed transport for the given region using
// the default credential chain. One transport is constructed per process and
// shared: the underlying client is safe for concurrent use.
func NewTransport(ctx context.Context, region string) (Transport, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &awsTransport{client: bedrockagentruntime.NewFromConfig(cfg)}, nil
}

func (t *awsTransport) Invoke(ctx context.Context, input *bedrockagentruntime.InvokeAgentInput) (Response, error) {
	out, err := t.client.InvokeAgent(ctx, input)
	if err != nil {
		return Response{}, err
	}
	stream := out.GetStream()
	if stream == nil {
		// Degenerate response with no event stream. There is no complete-text
		// field on this API, so the reply is empty.
		return Response{}, nil
	}
	return Response{Events: stream}, nil
}
