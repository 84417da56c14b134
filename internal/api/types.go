package api

import "github.com/arcanaland/tarotluna/internal/balance"

// User is the backend user record
type User struct {
	ID               int64  `json:"id" yaml:"id"`
	Username         string `json:"username,omitempty" yaml:"username,omitempty"`
	FirstName        string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	FreeRequestsLeft int    `json:"requests_left" yaml:"requests_left"`
	PremiumRequests  int    `json:"premium_requests" yaml:"premium_requests"`
	ReferralsCount   int    `json:"referrals_count" yaml:"referrals_count"`
	IsBanned         bool   `json:"is_banned" yaml:"is_banned"`
	HasAgreedRules   bool   `json:"agreed_rules" yaml:"agreed_rules"`
	Level            int    `json:"level" yaml:"level"`
	TotalReadings    int    `json:"total_readings" yaml:"total_readings"`
}

// Balance returns the request balance carried by the user record
func (u User) Balance() balance.Balance {
	return balance.Balance{
		Free:          u.FreeRequestsLeft,
		Premium:       u.PremiumRequests,
		TotalReadings: u.TotalReadings,
	}
}

// Stats is the backend usage summary of a user
type Stats struct {
	TotalReadings int     `json:"total_readings" yaml:"total_readings"`
	AvgCards      float64 `json:"avg_cards" yaml:"avg_cards"`
	FavoriteType  string  `json:"favorite_type,omitempty" yaml:"favorite_type,omitempty"`
	ActiveDays    int     `json:"active_days" yaml:"active_days"`
}

// AuthRequest is sent to authenticate the Telegram user
type AuthRequest struct {
	IdentityToken string `json:"initData"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
}

// ReadingRequest asks the backend to interpret a hand
type ReadingRequest struct {
	UserID      int64    `json:"user_id"`
	Question    string   `json:"question"`
	CardCount   int      `json:"cards_count"`
	ReadingType string   `json:"reading_type"`
	UsePremium  bool     `json:"use_premium"`
	CardLabels  []string `json:"cards"`
}

// ReadingCard is a card as echoed back by the backend
type ReadingCard struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	NameRu          string `json:"nameRu"`
	Image           string `json:"image"`
	IsReversed      bool   `json:"isReversed,omitempty"`
	Meaning         string `json:"meaning,omitempty"`
	MeaningReversed string `json:"meaningReversed,omitempty"`
}

// Reading is a generated interpretation
type Reading struct {
	Cards          []ReadingCard `json:"cards"`
	Interpretation string        `json:"interpretation"`
	ReadingType    string        `json:"reading_type"`
	IsPremium      bool          `json:"is_premium"`
}

// Payment is a pending payment created by the backend
type Payment struct {
	URL             string  `json:"url"`
	Label           string  `json:"label"`
	Amount          float64 `json:"amount"`
	RequestsGranted int     `json:"requests"`
	PackageKey      string  `json:"package_key"`
}

// Rate is a purchasable request package
type Rate struct {
	PackageKey      string `json:"package_key" yaml:"package_key"`
	Name            string `json:"name" yaml:"name"`
	RequestsGranted int    `json:"requests" yaml:"requests"`
	Price           int    `json:"price" yaml:"price"`
	Popular         bool   `json:"popular,omitempty" yaml:"popular,omitempty"`
	Discount        string `json:"discount,omitempty" yaml:"discount,omitempty"`
}

// DefaultRates are shown when the backend cannot list rates
var DefaultRates = []Rate{
	{PackageKey: "buy_1", Name: "Начальный", RequestsGranted: 5, Price: 100},
	{PackageKey: "buy_2", Name: "Популярный", RequestsGranted: 15, Price: 250, Popular: true, Discount: "-17%"},
	{PackageKey: "buy_3", Name: "Максимальный", RequestsGranted: 35, Price: 500, Discount: "-30%"},
}

// ReadingRecord is a past reading
type ReadingRecord struct {
	ID          int64  `json:"id" yaml:"id"`
	Question    string `json:"question" yaml:"question"`
	Cards       string `json:"cards" yaml:"cards"`
	Response    string `json:"response" yaml:"response"`
	ReadingType string `json:"reading_type" yaml:"reading_type"`
	IsPremium   bool   `json:"is_premium" yaml:"is_premium"`
	Timestamp   string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// When returns the record time, whichever field the backend filled
func (r ReadingRecord) When() string {
	if r.Timestamp != "" {
		return r.Timestamp
	}
	return r.CreatedAt
}

// PaymentRecord is a past payment
type PaymentRecord struct {
	ID            int64   `json:"id" yaml:"id"`
	Amount        float64 `json:"amount" yaml:"amount"`
	Requests      int     `json:"requests" yaml:"requests"`
	Status        string  `json:"status" yaml:"status"`
	Timestamp     string  `json:"timestamp" yaml:"timestamp"`
	YooMoneyLabel string  `json:"yoomoney_label,omitempty" yaml:"yoomoney_label,omitempty"`
	TariffName    string  `json:"tariff_name,omitempty" yaml:"tariff_name,omitempty"`
}

// History is one page of reading and payment history
type History struct {
	Readings []ReadingRecord `json:"history" yaml:"history"`
	Payments []PaymentRecord `json:"payments" yaml:"payments"`
	Total    int             `json:"total" yaml:"total"`
}

// Achievement is an achievement record from the backend
type Achievement struct {
	Key         string `json:"key"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	MaxProgress int    `json:"max_progress,omitempty"`
	Completed   bool   `json:"completed"`
	Claimed     bool   `json:"claimed"`
	Reward      int    `json:"reward,omitempty"`
}

// Level is the user's level and experience
type Level struct {
	Level      int `json:"level"`
	Experience int `json:"experience"`
}

// Achievements is the achievements response
type Achievements struct {
	Achievements []Achievement `json:"achievements"`
	Level        Level         `json:"level"`
}
