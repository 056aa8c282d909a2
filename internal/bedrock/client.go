// Package bedrock invokes the remote care agent through Amazon Bedrock Agent
// Runtime and exposes its streamed reply as a pull-based chunk stream.
//
// The package owns the full wire contract of an invocation: agent and alias
// targeting, per-turn input text, the streaming tunables, and the attachment
// of session attributes. Attribute semantics follow one rule: when session
// attributes are present they are mirrored into both the sticky and the
// turn-scoped slot, so the two views can never diverge; baseline attributes
// ride in the turn-scoped slot only.
package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/carebyte/carebot/internal/log"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Transport performs the raw invocation. Required.
	Transport Transport

	// AgentID and AgentAliasID identify the deployed agent. Required.
	AgentID      string
	AgentAliasID string

	// GuardrailInterval is the character interval at which guardrails are
	// applied to streamed output. Must be at least 1.
	GuardrailInterval int32

	// StreamFinal requests incremental delivery of the final response.
	StreamFinal bool

	// Logger receives invocation diagnostics. Defaults to a discarding logger.
	Logger log.Logger
}

// Client invokes the care agent. It is immutable after construction and safe
// for concurrent use.
type Client struct {
	transport         Transport
	agentID           string
	aliasID           string
	guardrailInterval int32
	streamFinal       bool
	logger            log.Logger
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Transport == nil {
		return nil, ErrMissingTransport
	}
	if cfg.AgentID == "" {
		return nil, ErrMissingAgentID
	}
	if cfg.AgentAliasID == "" {
		return nil, ErrMissingAliasID
	}
	if cfg.GuardrailInterval < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGuardrailInterval, cfg.GuardrailInterval)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		transport:         cfg.Transport,
		agentID:           cfg.AgentID,
		aliasID:           cfg.AgentAliasID,
		guardrailInterval: cfg.GuardrailInterval,
		streamFinal:       cfg.StreamFinal,
		logger:            logger,
	}, nil
}

// Request describes one conversational turn.
type Request struct {
	// Prompt is the user's input text.
	Prompt string

	// SessionID continues the remote conversation it names.
	SessionID string

	// SessionAttrs, when non-empty, is mirrored into both the sticky and the
	// turn-scoped attribute slots of the request.
	SessionAttrs map[string]string

	// PromptAttrs, when non-empty and SessionAttrs is empty, rides in the
	// turn-scoped slot only.
	PromptAttrs map[string]string
}

// InvokeStreaming sends one turn to the agent and returns the reply stream.
// Traces are never requested. When the request carries no attributes at all,
// no session state block is sent and the agent's own defaults apply.
func (c *Client) InvokeStreaming(ctx context.Context, req Request) (*Stream, error) {
	input := &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(c.agentID),
		AgentAliasId: aws.String(c.aliasID),
		SessionId:    aws.String(req.SessionID),
		InputText:    aws.String(req.Prompt),
		EnableTrace:  aws.Bool(false),
		StreamingConfigurations: &types.StreamingConfigurations{
			ApplyGuardrailInterval: aws.Int32(c.guardrailInterval),
			StreamFinalResponse:    c.streamFinal,
		},
	}

	switch {
	case len(req.SessionAttrs) > 0:
		input.SessionState = &types.SessionState{
			SessionAttributes:       req.SessionAttrs,
			PromptSessionAttributes: req.SessionAttrs,
		}
	case len(req.PromptAttrs) > 0:
		input.SessionState = &types.SessionState{
			PromptSessionAttributes: req.PromptAttrs,
		}
	}

	c.logger.Debug("invoking agent",
		"session_id", req.SessionID,
		"session_attrs", len(req.SessionAttrs),
		"prompt_attrs", len(req.PromptAttrs),
		"prompt_len", len(req.Prompt))

	resp, err := c.transport.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("invoking agent: %w", err)
	}
	if resp.Events == nil {
		c.logger.Debug("agent returned no event stream, using complete text",
			"session_id", req.SessionID)
		return newCompleteStream(resp.Complete), nil
	}
	return newEventStream(resp.Events), nil
}
