// Package analytics answers traffic questions against Google Analytics
// through a four-stage pipeline: parse, tier resolution and validation,
// report execution, and response synthesis.
package analytics

import "github.com/sells-group/insights-agent/internal/model"

// Metric and dimension allowlists. The core tier is always available;
// the extended tier covers commerce fields and is enabled only when the
// query context calls for it.

// Metrics is the two-tier metric catalog.
var Metrics = model.MustCatalog(
	model.Tier{
		Name: "core",
		Fields: []model.Field{
			{Name: "activeUsers", Description: "Users who had an engaged session"},
			{Name: "newUsers", Description: "Number of first-time users"},
			{Name: "sessions", Description: "Total number of sessions"},
			{Name: "screenPageViews", Description: "Total page/screen views"},
			{Name: "bounceRate", Description: "Percentage of single-page sessions"},
			{Name: "averageSessionDuration", Description: "Average session length in seconds"},
			{Name: "sessionsPerUser", Description: "Average sessions per user"},
			{Name: "engagedSessions", Description: "Sessions with engagement"},
			{Name: "engagementRate", Description: "Percentage of engaged sessions"},
		},
	},
	model.Tier{
		Name: "extended",
		Fields: []model.Field{
			{Name: "eventCount", Description: "Total number of events"},
			{Name: "conversions", Description: "Total conversions"},
			{Name: "totalRevenue", Description: "Total revenue from purchases"},
			{Name: "ecommercePurchases", Description: "Number of purchases"},
			{Name: "transactions", Description: "Total transactions"},
			{Name: "itemRevenue", Description: "Revenue from items"},
			{Name: "addToCarts", Description: "Add to cart events"},
			{Name: "checkouts", Description: "Checkout events"},
			{Name: "itemsViewed", Description: "Items viewed"},
			{Name: "itemsPurchased", Description: "Items purchased"},
		},
	},
)

// Dimensions is the two-tier dimension catalog.
var Dimensions = model.MustCatalog(
	model.Tier{
		Name: "core",
		Fields: []model.Field{
			{Name: "pagePath", Description: "Page URL path"},
			{Name: "pageTitle", Description: "Page title"},
			{Name: "deviceCategory", Description: "Device type (desktop/mobile/tablet)"},
			{Name: "country", Description: "User country"},
			{Name: "city", Description: "User city"},
			{Name: "date", Description: "Date (YYYYMMDD format)"},
			{Name: "sessionSource", Description: "Traffic source"},
			{Name: "sessionMedium", Description: "Traffic medium"},
			{Name: "sessionCampaignName", Description: "Campaign name"},
			{Name: "browser", Description: "Browser name"},
			{Name: "operatingSystem", Description: "Operating system"},
			{Name: "language", Description: "User language"},
			{Name: "landingPage", Description: "First page in session"},
		},
	},
	model.Tier{
		Name: "extended",
		Fields: []model.Field{
			{Name: "eventName", Description: "Event name"},
			{Name: "transactionId", Description: "Transaction ID"},
			{Name: "itemName", Description: "Product/item name"},
			{Name: "itemCategory", Description: "Product category"},
			{Name: "itemBrand", Description: "Product brand"},
		},
	},
)

// extendedTriggers are substrings of the query text that enable the
// extended tier. Checked case-insensitively, in order.
var extendedTriggers = []string{
	"revenue", "sales", "transactions", "purchase", "ecommerce",
	"e-commerce", "conversions", "convert", "events", "event count",
	"cart", "checkout", "order", "buy", "bought", "sold", "money",
	"income", "earnings", "item",
}

// Default query parameters applied when extraction comes back partial
// or fails outright.
const (
	defaultMetric    = "activeUsers"
	defaultStartDate = "7daysAgo"
	defaultEndDate   = "today"
	defaultLimit     = 10
)
