package domain

import (
	"time"
)

// Major is the fixed set of study programs. A profile's major stays nil
// until onboarding completes; discovery is gated on it being set.
type Major string

const (
	MajorScience     Major = "Science"
	MajorArts        Major = "Arts"
	MajorEngineering Major = "Engineering"
	MajorBusiness    Major = "Business"
	MajorMedicine    Major = "Medicine"
	MajorLaw         Major = "Law"
	MajorEducation   Major = "Education"
)

func Majors() []Major {
	return []Major{
		MajorScience, MajorArts, MajorEngineering,
		MajorBusiness, MajorMedicine, MajorLaw, MajorEducation,
	}
}

type Interest string

const (
	InterestHiking       Interest = "Hiking"
	InterestMusic        Interest = "Music"
	InterestPainting     Interest = "Painting"
	InterestSkiing       Interest = "Skiing"
	InterestGaming       Interest = "Gaming"
	InterestReading      Interest = "Reading"
	InterestCooking      Interest = "Cooking"
	InterestPhotography  Interest = "Photography"
	InterestFootball     Interest = "Football"
	InterestVolunteering Interest = "Volunteering"
)

type Language string

const (
	LanguageEnglish  Language = "English"
	LanguageSpanish  Language = "Spanish"
	LanguageFrench   Language = "French"
	LanguageMandarin Language = "Mandarin"
	LanguageArabic   Language = "Arabic"
	LanguageGerman   Language = "German"
)

// NotificationSettings holds the three independent switches. The
// sub-switches only take effect while Enabled is on.
type NotificationSettings struct {
	Enabled        bool `json:"enabled"`
	DailyMatches   bool `json:"daily_matches"`
	DirectMessages bool `json:"direct_messages"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Enabled: true, DailyMatches: true, DirectMessages: true}
}

type Profile struct {
	ID          string
	Email       string
	DisplayName string
	Major       *Major
	Bio         string
	Interests   []Interest
	Languages   []Language
	HomeRegion  string
	PhotoURL    string
	Verified    bool
	Searchable  bool
	Settings    NotificationSettings
	CreatedAt   time.Time
}

// ProfileUpdate carries a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Major       *Major
	Bio         *string
	Interests   *[]Interest
	Languages   *[]Language
	HomeRegion  *string
	PhotoURL    *string
	Searchable  *bool
	Settings    *NotificationSettings
}

// MatchCandidate is a projection of another user's profile plus the
// viewer-relative common-interest overlap. Recomputed on every fetch.
type MatchCandidate struct {
	Profile
	CommonInterests []Interest
}

// ConnectionSummary resolves one mutual connection to the counterpart's
// display profile and the time the second reciprocal edge landed.
type ConnectionSummary struct {
	Peer      Profile
	MatchedAt time.Time
}

type SwipeAction string

const (
	SwipeConnect SwipeAction = "CONNECT"
	SwipeDismiss SwipeAction = "DISMISS"
)

type RequestResponse string

const (
	RespondAccept  RequestResponse = "ACCEPT"
	RespondDecline RequestResponse = "DECLINE"
)
