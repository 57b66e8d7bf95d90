package recommend

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrUnparsable is returned when no parse strategy can recover a
// structured response from the generated text.
var ErrUnparsable = errors.New("unparsable generation response")

// Strategy is one pure attempt at turning raw model text into a
// Response. Strategies are tried in order; the first that yields Some
// wins. Each is independently testable.
type Strategy struct {
	// Name identifies the strategy in logs.
	Name string

	// Parse attempts the conversion.
	Parse func(text string) fn.Option[Response]
}

// strategies is the ordered repair chain: take the text at face value,
// then dig out the first braced region, then fix the usual JSON sins
// (trailing commas, unquoted keys, single quotes) and try once more.
var strategies = []Strategy{
	{Name: "verbatim", Parse: parseVerbatim},
	{Name: "extract", Parse: parseExtracted},
	{Name: "repair", Parse: parseRepaired},
}

// ParseResponse runs the strategy chain over the generated text. The
// fenced-code-block wrapper some backends add is stripped first. The
// name of the winning strategy is returned for observability.
//
// A response whose recommendations list is present but empty is a valid
// parse; only a missing list (or unrecoverable syntax) fails.
func ParseResponse(text string) (Response, string, error) {
	text = stripCodeFences(text)

	for _, strat := range strategies {
		if opt := strat.Parse(text); opt.IsSome() {
			return opt.UnwrapOr(Response{}), strat.Name, nil
		}
	}

	return Response{}, "", ErrUnparsable
}

// fenceRe matches a fenced code block, with or without a language tag,
// capturing the inner payload.
var fenceRe = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\\s*(.*?)```")

// stripCodeFences unwraps the first fenced code block if the text
// contains one, otherwise returns the text unchanged.
func stripCodeFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// decode parses candidate JSON into a Response and validates that the
// recommendations key was actually present. Unmarshalling leaves the
// slice nil when the key is missing, which is how we tell "no list"
// apart from "empty list".
func decode(candidate string) fn.Option[Response] {
	var resp Response
	if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
		return fn.None[Response]()
	}

	if resp.Recommendations == nil {
		return fn.None[Response]()
	}

	return fn.Some(resp)
}

// parseVerbatim tries the text exactly as given.
func parseVerbatim(text string) fn.Option[Response] {
	return decode(text)
}

// bracedRe grabs the first top-level braced region: everything from the
// first '{' to the last '}'. Greedy, since nested objects are the
// common case.
var bracedRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseExtracted pulls out the braced region and parses that, which
// recovers responses wrapped in prose like "Here are my picks: {...}".
func parseExtracted(text string) fn.Option[Response] {
	region := bracedRe.FindString(text)
	if region == "" {
		return fn.None[Response]()
	}
	return decode(region)
}

var (
	// trailingCommaRe matches a comma directly before a closing
	// brace or bracket.
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	// unquotedKeyRe matches bare object keys after '{' or ','.
	unquotedKeyRe = regexp.MustCompile(
		`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`,
	)
)

// parseRepaired applies lightweight syntax repairs to the extracted
// braced region and parses the result. This is the last resort for
// almost-JSON output.
func parseRepaired(text string) fn.Option[Response] {
	region := bracedRe.FindString(text)
	if region == "" {
		region = text
	}

	repaired := trailingCommaRe.ReplaceAllString(region, "$1")
	repaired = unquotedKeyRe.ReplaceAllString(repaired, `$1"$2":`)
	repaired = strings.ReplaceAll(repaired, "'", `"`)

	return decode(repaired)
}
