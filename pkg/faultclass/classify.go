package faultclass

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// User-facing sentences. The unavailable variants share a common lead so the
// UI can render them uniformly next to a retry button.
const (
	msgUnavailableLead = "Service temporarily unavailable. "

	msgStopped     = msgUnavailableLead + "The backend service is stopped. Please start it and try again."
	msgNotDeployed = msgUnavailableLead + "The backend service may not be deployed. Please ensure it is running."
	msgNetwork     = msgUnavailableLead + "Network connection issue. Please check your connection and try again."
	msgUnavailable = msgUnavailableLead + "Please ensure the backend is running and try again."

	msgUnauthorized = "You do not have permission to perform this action."
	msgFallback     = "Unable to complete the operation. Please try again."
	msgUnknown      = "An unknown error occurred"
)

// clientNotReadySentinel is the internal placeholder thrown when an operation
// runs before its backend client has been constructed. It must never be shown
// verbatim; Classify rewrites it to a specific unavailable sentence.
const clientNotReadySentinel = "backend service is not available"

// Pattern tables, matched against the lowercased error message. Order within
// a table does not matter; the tables themselves are checked in the order
// stopped -> not-deployed -> network -> rejected.
var (
	stoppedPatterns = []string{
		"ic0508",
		"canister is stopped",
	}
	notDeployedPatterns = []string{
		"canister not found",
		"canister id not found",
		"not deployed",
		"deployment",
	}
	networkPatterns = []string{
		"no route to host",
		"connection refused",
		"timeout",
		"network error",
		"failed to fetch",
	}
	rejectedPatterns = []string{
		"canister rejected",
		"reject code",
		"destination invalid",
	}
	unauthorizedPatterns = []string{
		"unauthorized",
		"permission",
		"access denied",
		"only admins can",
	}
)

var (
	rejectTextRe   = regexp.MustCompile(`(?i)reject text:\s*([^\n]+)`)
	callRejectedRe = regexp.MustCompile(`(?i)call was rejected:\s*([^\n]+)`)
	prefixRes      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^error:\s*`),
		regexp.MustCompile(`(?i)^reject text:\s*`),
		regexp.MustCompile(`(?i)^call was rejected:\s*`),
	}
)

// Classify maps an arbitrary error into a Classified. It is pure and
// deterministic: the same input message always yields the same kind and user
// message. Already-classified errors pass through unchanged.
func Classify(err error) *Classified {
	if err == nil {
		return &Classified{Kind: KindGeneric, UserMessage: msgUnknown}
	}
	if c, ok := As(err); ok {
		return c
	}

	// A gRPC status carries an explicit code; trust it before falling back to
	// message-pattern matching.
	if s, ok := status.FromError(err); ok && s.Code() != codes.OK && s.Code() != codes.Unknown {
		if c := classifyStatusCode(s.Code(), err); c != nil {
			return c
		}
	}
	if isDeadline(err) {
		return &Classified{Kind: KindUnavailable, UserMessage: msgNetwork, Cause: err}
	}

	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		return &Classified{Kind: KindGeneric, UserMessage: msgFallback, Cause: err}
	}
	lower := strings.ToLower(strings.TrimSpace(msg))

	if lower == clientNotReadySentinel {
		return &Classified{Kind: KindUnavailable, UserMessage: msgUnavailable, Cause: err}
	}
	if containsAny(lower, stoppedPatterns) {
		return &Classified{Kind: KindUnavailable, UserMessage: msgStopped, Cause: err}
	}
	if containsAny(lower, notDeployedPatterns) {
		return &Classified{Kind: KindUnavailable, UserMessage: msgNotDeployed, Cause: err}
	}
	if containsAny(lower, networkPatterns) {
		return &Classified{Kind: KindUnavailable, UserMessage: msgNetwork, Cause: err}
	}
	if containsAny(lower, rejectedPatterns) {
		return &Classified{Kind: KindUnavailable, UserMessage: msgUnavailable, Cause: err}
	}
	if containsAny(lower, unauthorizedPatterns) {
		return &Classified{Kind: KindUnauthorized, UserMessage: msgUnauthorized, Cause: err}
	}

	return &Classified{Kind: KindGeneric, UserMessage: genericMessage(msg), Cause: err}
}

func classifyStatusCode(code codes.Code, cause error) *Classified {
	switch code {
	case codes.Unavailable:
		return &Classified{Kind: KindUnavailable, UserMessage: msgUnavailable, Cause: cause}
	case codes.DeadlineExceeded:
		return &Classified{Kind: KindUnavailable, UserMessage: msgNetwork, Cause: cause}
	case codes.PermissionDenied, codes.Unauthenticated:
		return &Classified{Kind: KindUnauthorized, UserMessage: msgUnauthorized, Cause: cause}
	case codes.InvalidArgument, codes.FailedPrecondition:
		return &Classified{Kind: KindInvalid, UserMessage: genericMessage(status.Convert(cause).Message()), Cause: cause}
	default:
		return nil
	}
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// genericMessage extracts the most relevant sentence from a raw backend
// message: prefer an embedded reject text, then strip known prefixes. Messages
// too short to be meaningful are replaced with a fixed fallback.
func genericMessage(msg string) string {
	if m := rejectTextRe.FindStringSubmatch(msg); m != nil {
		msg = m[1]
	}
	if m := callRejectedRe.FindStringSubmatch(msg); m != nil {
		msg = m[1]
	}
	for _, re := range prefixRes {
		msg = re.ReplaceAllString(msg, "")
	}
	msg = strings.TrimSpace(msg)
	if len(msg) < 3 {
		return msgFallback
	}
	return msg
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
