package register

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBreachURL is the public k-anonymity range endpoint of the
// Pwned Passwords corpus.
const DefaultBreachURL = "https://api.pwnedpasswords.com"

// BreachChecker queries a compromised-password corpus by partial hash.
// Only the first five hex characters of the SHA-1 digest ever leave the
// process.
type BreachChecker struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewBreachChecker returns a checker against baseURL (DefaultBreachURL in
// production). httpClient may be nil.
func NewBreachChecker(baseURL string, httpClient *http.Client, log *zap.Logger) *BreachChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BreachChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// Compromised reports whether the password appears in the breach corpus.
//
// Any failure reaching or reading the corpus returns (false, err): the
// caller treats the password as not compromised. Registration availability
// deliberately wins over breach-check strictness here; see the package
// tests pinning this behavior.
func (b *BreachChecker) Compromised(ctx context.Context, password string) (bool, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return false, err
	}

	resp, err := b.http.Do(req)
	if err != nil {
		b.log.Warn("breach check unavailable", zap.Error(err))
		return false, fmt.Errorf("breach range request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.log.Warn("breach check returned non-200", zap.Int("status", resp.StatusCode))
		return false, fmt.Errorf("breach range request: status %d", resp.StatusCode)
	}

	// Response is newline-delimited "SUFFIX:count" lines.
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		got, _, found := strings.Cut(line, ":")
		if found && strings.EqualFold(got, suffix) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read breach range: %w", err)
	}
	return false, nil
}
