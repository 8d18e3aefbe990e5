// Package submit delivers a completed ResponseMap to the SmartForms
// submission endpoint and decodes the settled outcome.
//
// The wire format is a single form-urlencoded POST carrying an action tag,
// a security nonce, the form identifier and the JSON encoded answers:
//
//	client := submit.NewClient(endpoint,
//		submit.WithNonce(nonce),
//		submit.WithFormID("42"),
//	)
//	result, err := client.Submit(ctx, responses)
//
// A response is settled when its body decodes as {success, data}, whatever
// the status code. Anything else is a *TransportError.
package submit
