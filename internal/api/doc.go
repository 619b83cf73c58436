// Package api implements the client side of the streaming Messages protocol:
// the wire data model, the event decoder, the streaming aggregator and the
// HTTP transport.
//
// # Architecture
//
// A round flows one way through this package:
//
//   - client.go: Client posts a Request to the Messages endpoint (the transport)
//   - events.go: DecodeEvents turns "data:" lines into typed Events
//   - stream.go: StreamAggregator folds Events into a ChatResponse
//   - types.go: Message, Content and the content block variants, Tool, ToolCall
//   - errors.go: TransportError and APIError
//
// # Usage
//
//	client := api.NewClient(cfg)
//	resp, err := client.Stream(ctx, api.Request{
//	    Model:     cfg.Model,
//	    MaxTokens: cfg.MaxTokens,
//	    Messages:  []api.Message{api.NewTextMessage(api.RoleUser, "What time is it?")},
//	}, func(chunk string) { fmt.Print(chunk) })
//
// Payloads the decoder does not recognise are skipped, malformed tool input
// degrades to an empty object, and only transport failures abort a round.
package api
