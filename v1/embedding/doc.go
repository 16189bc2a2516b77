// Package embedding turns text into L2-normalised dense vectors.
//
// # Overview
//
// A Client wraps one Provider and bounds how many model invocations run at
// once (Config.Workers, 1 or 2). Two providers ship with the package:
//
//   - FastEmbedProvider runs a local ONNX sentence model through fastembed-go.
//     It requires cgo; binaries built without cgo get a stub that returns
//     ErrProviderUnavailable.
//   - RemoteProvider calls any OpenAI-compatible /embeddings endpoint through
//     langchaingo.
//
// # Usage
//
//	client, err := embedding.NewClientFromConfig(ctx, cfg, log, nil)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	vectors, err := client.Encode(ctx, []string{"first chunk", "second chunk"})
//
// Encode returns one vector per text in input order. Every failure of the model is
// wrapped in ErrEmbeddingFailure:
//
//	if errors.Is(err, embedding.ErrEmbeddingFailure) { ... }
//
// EncodeAsync runs the same work on a separate goroutine and delivers a single
// Result on the returned channel.
//
// # Fx
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Supply(embedding.DefaultConfig()),
//		embedding.FXModule,
//	)
package embedding
