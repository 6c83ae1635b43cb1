// Package core provides the qrfetch client and the shared types of the
// request-fallback pipeline.
//
// qrfetch requests QR code images from a remote HTTP service that decodes
// its text parameter unreliably. The core package defines the vocabulary
// that the fallback chain, the strategies and the observers share.
//
// # Client and Fetcher
//
// The primary entry point is [Client], which wraps a [Fetcher] and adds call
// IDs and telemetry:
//
//	chain := fallback.New(fallback.WithBaseURL("https://qr.example.com"))
//	client := core.NewClient(chain,
//	    core.WithObserver(myObserver),
//	)
//
//	res, err := client.Request(ctx, "https://example.com/x?y=1")
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("qr.png", res.Image.Data, 0o644)
//
// [Client.Request] trims the text and never rejects the empty string.
//
// # Outcomes
//
// A successful run returns a [Result] holding the image, the strategy that
// produced it and the attempt log. When every strategy fails the error is an
// [*ExhaustedError] with one [Attempt] per strategy tried, in order:
//
//	var exhausted *core.ExhaustedError
//	if errors.As(err, &exhausted) {
//	    for _, a := range exhausted.Attempts {
//	        fmt.Println(a.Strategy, a.Kind, a.Message)
//	    }
//	}
//
// Callers that only want one line use [Client.Generate], which turns the
// log into a [*GenerateError] via [Summarize].
//
// # Error Handling
//
// Each failed attempt is classified into an [ErrorKind] and carried as an
// [*AttemptError]. Sentinels allow errors.Is checks on both attempt and
// exhausted errors:
//   - [ErrClientSideNetwork]: the request could not be built or sent
//   - [ErrCorsOrUnreachable]: no response arrived
//   - [ErrServer]: the service answered with status >= 400
//   - [ErrInvalidResponse]: empty body, non-2xx or non-image content type
//   - [ErrUnknown]: anything else
//   - [ErrExhausted]: every strategy failed
//
// # Telemetry
//
// Implement [Observer] (or embed [BaseObserver]) to watch attempt start,
// transport retries, attempt end and the final outcome. Ready-made
// observers for slog, Prometheus and OpenTelemetry live in package observe.
//
// # Thread Safety
//
// [Client] is safe for concurrent use across goroutines. Observers are
// invoked synchronously and must be safe for concurrent calls when the
// client is shared.
package core
