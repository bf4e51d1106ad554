// internal/cutoff/feed.go
package cutoff

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"immigration-workers/internal/common/errors"
	commonhttp "immigration-workers/internal/common/http"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/crs"

	"github.com/tidwall/gjson"
)

// DefaultFeedURL is the public Express Entry rounds feed.
const DefaultFeedURL = "https://www.canada.ca/content/dam/ircc/documents/json/ee_rounds_123_en.json"

// DrawSource yields Express Entry draws, newest first.
type DrawSource interface {
	Fetch(ctx context.Context) ([]crs.Draw, error)
}

// FeedClient reads the IRCC rounds JSON feed.
type FeedClient struct {
	http *commonhttp.Client
	url  string
	log  logger.Logger
}

func NewFeedClient(url string, timeout time.Duration, log logger.Logger) *FeedClient {
	if url == "" {
		url = DefaultFeedURL
	}
	return &FeedClient{
		http: commonhttp.NewClient(timeout, "immigration-workers/cutoff"),
		url:  url,
		log:  log.WithFields(map[string]interface{}{"component": "draw-feed"}),
	}
}

func (c *FeedClient) Fetch(ctx context.Context) ([]crs.Draw, error) {
	body, err := c.http.GetJSON(ctx, c.url)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.NewDrawFeedTimeoutError(c.url)
		}
		return nil, errors.NewDrawFeedFailedError(err)
	}

	draws, skipped, err := ParseRounds(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.log.Warn("skipped malformed rounds", map[string]interface{}{"skipped": skipped, "parsed": len(draws)})
	}
	return draws, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

var feedDateLayouts = []string{"2006-01-02", "January 2, 2006"}

// ParseRounds decodes the feed's "rounds" array. Numeric fields arrive as
// strings with thousands separators ("7,500"); rounds missing a number, date
// or score are skipped and counted. The result is sorted newest first.
func ParseRounds(body []byte) ([]crs.Draw, int, error) {
	if !gjson.ValidBytes(body) {
		return nil, 0, errors.NewDrawFeedFailedError(fmt.Errorf("feed is not valid JSON"))
	}
	rounds := gjson.GetBytes(body, "rounds")
	if !rounds.IsArray() {
		return nil, 0, errors.NewDrawFeedEmptyError("feed has no rounds array")
	}

	var (
		draws   []crs.Draw
		skipped int
	)
	rounds.ForEach(func(_, round gjson.Result) bool {
		d, ok := parseRound(round)
		if !ok {
			skipped++
			return true
		}
		draws = append(draws, d)
		return true
	})

	if len(draws) == 0 {
		return nil, skipped, errors.NewDrawFeedEmptyError(fmt.Sprintf("no usable rounds (%d skipped)", skipped))
	}
	crs.SortDrawsNewestFirst(draws)
	return draws, skipped, nil
}

func parseRound(r gjson.Result) (crs.Draw, bool) {
	number, ok := feedInt(r.Get("drawNumber"))
	if !ok {
		return crs.Draw{}, false
	}
	score, ok := feedInt(r.Get("drawCRS"))
	if !ok || score < 0 {
		return crs.Draw{}, false
	}
	date, ok := feedDate(r.Get("drawDate"))
	if !ok {
		if date, ok = feedDate(r.Get("drawDateFull")); !ok {
			return crs.Draw{}, false
		}
	}
	invitations, _ := feedInt(r.Get("drawSize"))

	return crs.Draw{
		Number:      number,
		Date:        date,
		Type:        strings.TrimSpace(r.Get("drawName").String()),
		Score:       score,
		Invitations: invitations,
	}, true
}

func feedInt(v gjson.Result) (int, bool) {
	if !v.Exists() {
		return 0, false
	}
	if v.Type == gjson.Number {
		return int(v.Int()), true
	}
	s := strings.NewReplacer(",", "", " ", "").Replace(v.String())
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func feedDate(v gjson.Result) (time.Time, bool) {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
