// Package httpx provides the HTTP transport shared by the whole pipeline.
//
// Client issues single GET requests and classifies the outcome: transport
// failures are returned as errors, while any HTTP status produces a
// Response whose body can be read as text or streamed chunk by chunk.
// Fetcher layers the retry budget on top for document retrieval.
//
// # Basic Usage
//
//	client := httpx.NewClient(60 * time.Second)
//
//	resp, err := client.Fetch(ctx, "https://nookipedia.com/wiki/Bubblegum_K.K.")
//	if err != nil {
//	    return err // connection-level failure
//	}
//	if !resp.IsSuccess() {
//	    resp.Body.Close()
//	    return resp.StatusError()
//	}
//	html, err := resp.Text()
package httpx
