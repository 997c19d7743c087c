package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"rollcall-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

var tracer = otel.Tracer("scrapers/attendance")

const (
	sheetsBaseURL       = "https://sheets.googleapis.com"
	serviceAccountEmail = "roll-call-assistant@bw-roll-call-assistant.iam.gserviceaccount.com"
	readRange           = "A1:ZZ1000"
)

var spreadsheetIDRegex = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Worksheet is a read-only grid of cells. Row/column indices are 1-based,
// matching how the sheet UI numbers them; anything out of range reads as
// the empty string.
type Worksheet interface {
	NumRows() int
	Row(i int) []string
	Col(i int) []string
	Cell(row, col int) string
}

// Grid implements Worksheet over in-memory cell data.
type Grid [][]string

func (g Grid) NumRows() int {
	return len(g)
}

func (g Grid) Row(i int) []string {
	if i < 1 || i > len(g) {
		return nil
	}
	return g[i-1]
}

func (g Grid) Col(i int) []string {
	if i < 1 {
		return nil
	}
	col := make([]string, len(g))
	for r, row := range g {
		if i <= len(row) {
			col[r] = row[i-1]
		}
	}
	return col
}

func (g Grid) Cell(row, col int) string {
	if row < 1 || row > len(g) {
		return ""
	}
	r := g[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// Credentials hold the parts of the service-account key that vary between
// deployments. The key is assembled in memory, no credential file ever
// touches disk.
type Credentials struct {
	PrivateKeyID string
	PrivateKey   string
}

// Client fetches worksheet grids through the Sheets v4 values endpoint.
type Client struct {
	http   *resty.Client
	tokens oauth2.TokenSource
}

func NewClient(ctx context.Context, creds Credentials) *Client {
	cfg := &jwt.Config{
		Email: serviceAccountEmail,
		// TOML/UI input carries the key with literal \n sequences
		PrivateKey:   []byte(strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")),
		PrivateKeyID: creds.PrivateKeyID,
		Scopes:       []string{"https://www.googleapis.com/auth/spreadsheets.readonly"},
		TokenURL:     google.JWTTokenURL,
	}

	client := resty.New()
	client.SetBaseURL(sheetsBaseURL)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "scrapers/attendance/http")

	return &Client{
		http:   client,
		tokens: cfg.TokenSource(ctx),
	}
}

// Worksheet downloads the first worksheet of the spreadsheet behind the
// given share link, rendered the way the sheet displays it (dates come
// back as their formatted strings).
func (c *Client) Worksheet(ctx context.Context, link string) (Worksheet, error) {
	ctx, span := tracer.Start(ctx, "client:Worksheet")
	defer span.End()

	groups := spreadsheetIDRegex.FindStringSubmatch(link)
	if len(groups) < 2 {
		err := fmt.Errorf("not a spreadsheet link: %s", link)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	id := groups[1]

	token, err := c.tokens.Token()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to obtain an access token")
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetQueryParam("valueRenderOption", "FORMATTED_VALUE").
		SetQueryParam("majorDimension", "ROWS").
		Get(fmt.Sprintf("/v4/spreadsheets/%s/values/%s", id, readRange))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch sheet values")
		return nil, err
	}
	if res.StatusCode() != 200 {
		err = fmt.Errorf("sheets api returned %d: %s", res.StatusCode(), res.String())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var body struct {
		Values [][]any `json:"values"`
	}
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode sheet values")
		return nil, err
	}

	grid := make(Grid, len(body.Values))
	for r, row := range body.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		grid[r] = cells
	}
	return grid, nil
}
