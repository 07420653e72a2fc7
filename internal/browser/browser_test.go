package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.False(t, opts.Headless)
	assert.Equal(t, 60*time.Second, opts.Timeout)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.NotEmpty(t, opts.Indicators.Block)
	assert.NotEmpty(t, opts.Indicators.Challenge)
}

func TestIndicators(t *testing.T) {
	ind := DefaultIndicators()

	tests := []struct {
		name      string
		text      string
		blocked   bool
		challenge bool
	}{
		{"Normal product page", "Lip Tint $12.00 Sold by Acme Store", false, false},
		{"Region block", "Sorry, this Product Not Available In This Country", true, false},
		{"Region block variant", "This product isn't currently available", true, false},
		{"Captcha", "Please complete the CAPTCHA", false, true},
		{"Slider verification", "Verify to continue", false, true},
		{"Both", "Not available in your region. Refresh to try again", true, true},
		{"Empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocked, ind.IsBlocked(tt.text))
			assert.Equal(t, tt.challenge, ind.IsChallenge(tt.text))
		})
	}
}

func TestIndicatorsCustomPhrases(t *testing.T) {
	ind := Indicators{Block: []string{"Nicht Verfügbar"}}

	assert.True(t, ind.IsBlocked("dieses produkt ist nicht verfügbar"))
	assert.False(t, ind.IsChallenge("captcha"))
}

func TestNavigationError(t *testing.T) {
	cause := errors.New("net::ERR_TIMED_OUT")

	err := &NavigationError{URL: "https://shop.tiktok.com/p/1", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ERR_TIMED_OUT")

	status := &NavigationError{URL: "https://shop.tiktok.com/p/1", Status: 403}
	assert.Contains(t, status.Error(), "status 403")
	assert.Nil(t, status.Unwrap())

	var navErr *NavigationError
	assert.True(t, errors.As(error(status), &navErr))
	assert.Equal(t, 403, navErr.Status)
}

func TestLauncherCloseWithoutDriver(t *testing.T) {
	l := NewLauncher(nil)
	assert.NoError(t, l.Close())
}
