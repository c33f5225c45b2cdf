// client.go contains the logic for talking to the student portal, an ASP.NET
// WebForms site where every page is a form posting back to itself.

package portal

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"absence-tracker/internal/components/assert"
	"absence-tracker/internal/components/telemetry"
	"absence-tracker/lib/htmlutil"
	"absence-tracker/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_client_login            = "client.login"
	report_client_fetch_attendance = "client.fetch-attendance"
	report_client_fetch_leave      = "client.fetch-leave-forms"
)

const (
	fieldAccount  = "account"
	fieldPassword = "account_pass"
	fieldSignIn   = "SignIn"
)

var tracer = otel.Tracer("absence-tracker/portal")

// Client is a logged in (or about to be logged in) session with the portal.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	config Config
	tel    telemetry.API
}

// NewClient creates a client with its own cookie jar, `dump` can be nil, when
// it is not every HTTP exchange is written to it (passwords redacted).
func NewClient(config Config, tel telemetry.API, dump restyutil.InstrumentOutput) (*Client, error) {
	assert.NotNil(tel)

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	tel = telemetry.NewScopedAPI("portal", tel)

	parsedBaseUrl, err := url.Parse(config.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(config.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if config.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(config.Timeout())

	burst := int(config.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.DumpMessages(httpClient, dump, fieldPassword)

	return &Client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		config:  config,
		tel:     tel,
	}, nil
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func isLoginPage(doc *goquery.Document) bool {
	return doc.Find(fmt.Sprintf("input[name=%s]", fieldPassword)).Length() > 0
}

// Login signs into the portal, the session is kept in the client's cookie jar.
// A rejected account or password is reported as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, account, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginError := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return fmt.Errorf("login: %w", classify(err))
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.config.LoginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login page request: %w", err),
		)
		return loginError(err)
	}
	if res.IsError() {
		err := fmt.Errorf("login page: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse login page: %w", err),
		)
		return loginError(err)
	}

	form := doc.Find(fmt.Sprintf("input[name=%s]", fieldAccount)).Closest("form")
	if form.Length() == 0 {
		err := fmt.Errorf("could not find login form")
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}

	values := htmlutil.FormValues(form)
	values[fieldAccount] = account
	values[fieldPassword] = password
	values[fieldSignIn] = form.Find(fmt.Sprintf("input[name=%s]", fieldSignIn)).AttrOr("value", "")

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(values).
		Post(c.config.LoginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("login request: %w", err),
		)
		return loginError(err)
	}
	if res.IsError() {
		err := fmt.Errorf("login request: unexpected status %s", res.Status())
		c.tel.ReportBroken(report_client_login, err)
		return loginError(err)
	}
	doc, err = parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("parse login response: %w", err),
		)
		return loginError(err)
	}

	// a successful login moves away from the login form
	if isLoginPage(doc) {
		c.tel.ReportWarning(report_client_login, "login form returned after sign in")
		return loginError(ErrInvalidCredentials)
	}

	return nil
}

// FetchAttendance returns the rows of the attendance exception report.
func (c *Client) FetchAttendance(ctx context.Context) ([][]string, error) {
	return c.fetchTable(ctx, report_client_fetch_attendance, c.config.AttendancePath)
}

// FetchLeaveForms returns the rows of the leave form report.
func (c *Client) FetchLeaveForms(ctx context.Context) ([][]string, error) {
	return c.fetchTable(ctx, report_client_fetch_leave, c.config.LeaveFormPath)
}

func (c *Client) fetchTable(ctx context.Context, reportId, path string) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "client:fetchTable")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	fail := func(err error) ([][]string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch table failed")
		return nil, fmt.Errorf("fetch %s: %w", path, classify(err))
	}

	start := time.Now()
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err), path)
		return fail(err)
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected status %s", res.Status())
		c.tel.ReportBroken(reportId, err, path)
		return fail(err)
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("parse: %w", err), path)
		return fail(err)
	}

	rows, err := ParseTable(doc, c.config.TableId)
	if err != nil {
		if isLoginPage(doc) {
			err = ErrSessionExpired
		}
		c.tel.ReportWarning(reportId, err, path)
		return fail(err)
	}

	c.tel.ReportDebug(reportId, path, len(rows), time.Since(start).String())
	return rows, nil
}

// ParseTable returns the rows of the table with the given id, ErrTableNotFound
// when the document has no such table.
func ParseTable(doc *goquery.Document, tableId string) ([][]string, error) {
	table := doc.Find(fmt.Sprintf("table[id=%q]", tableId)).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: #%s", ErrTableNotFound, tableId)
	}
	return htmlutil.TableRows(table), nil
}
