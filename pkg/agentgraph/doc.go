// Package agentgraph is a multi-turn conversational agent engine built
// as an explicit state machine: reasoning, tool execution, history
// summarization, and a long-term memory update.
//
// Each turn is a run. A run streams its progress (tokens, tool calls,
// completion) over a single-consumer event channel, and checkpoints the
// conversation state after every node so a crashed or cancelled turn
// resumes exactly where it stopped.
//
// Basic usage:
//
//	engine, err := agentgraph.New(
//		agentgraph.WithLLM(client),
//		agentgraph.WithTools(registry),
//		agentgraph.WithCheckpointStore(store),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	stream, err := engine.Run(ctx, agentgraph.RunRequest{
//		ThreadID: "thread-1",
//		UserID:   "user-1",
//		Message:  "What's the weather in Berlin?",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for ev := range stream.Events() {
//		switch ev.Type {
//		case agentgraph.EventTokenProduced:
//			fmt.Print(ev.Token)
//		case agentgraph.EventRunCompleted:
//			fmt.Println()
//		}
//	}
//
// Threads are mutually exclusive: a second Run on a busy thread fails
// fast with ErrThreadBusy. Global and per-user concurrency caps behave
// the same way (ErrCapacity, ErrUserCapacity).
package agentgraph
