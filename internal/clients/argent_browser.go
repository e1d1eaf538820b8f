package clients

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

const defaultArgentURL = "https://portfolio.argent.xyz"

// DOM hooks of the Argent portfolio page: one container per held token,
// with an amount node and the symbol in the second <p>.
const (
	tokenContainerSelector = ".css-x01ui3"
	extractTokensJS        = `Array.from(document.querySelectorAll('.css-x01ui3')).map(function (el) {
		var amount = el.querySelector('.css-1ac2ftb');
		var texts = el.querySelectorAll('p');
		return {
			symbol: texts.length > 1 ? texts[1].textContent.trim() : '',
			amount: amount ? amount.textContent.trim() : '',
		};
	})`
)

// ArgentScraper renders the Argent portfolio dashboard in a headless browser
// and extracts the token list of one wallet per session.
type ArgentScraper struct {
	BaseURL string
	Timeout time.Duration
}

func NewArgentScraper() *ArgentScraper {
	return &ArgentScraper{
		BaseURL: defaultArgentURL,
		Timeout: time.Minute,
	}
}

// ScrapedToken is one token row as read from the page. Fields a token is
// missing in the DOM come back empty so the caller can skip that token.
type ScrapedToken struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

// WalletTokens opens the wallet's overview page in a fresh browser session
// and reads every token container. The session is torn down before
// returning, whatever the outcome.
func (s *ArgentScraper) WalletTokens(ctx context.Context, address string) ([]ScrapedToken, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, s.Timeout)
	defer cancelTimeout()

	var tokens []ScrapedToken
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.BaseURL+"/overview/"+address),
		chromedp.WaitVisible(tokenContainerSelector, chromedp.ByQuery),
		chromedp.Evaluate(extractTokensJS, &tokens),
	)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "render wallet page: %s", err)
	}
	return tokens, nil
}
