package constants

import "time"

const (
	APP_NAME          = "WalkIntoVoid"
	PUBLIC_URL        = "https://walkintovoid.noobx.in"
	MAX_POSTS_TO_SHOW = 2000

	// registration
	OTP_TTL         = 15 * time.Minute
	OTP_MIN         = 100000
	OTP_MAX         = 999999
	BCRYPT_COST     = 12
	OTP_MAIL_SENDER = "WalkIntoVoid@noobx.in"
	OTP_MAIL_TITLE  = "OTP for WalkIntoVoid Blogs"

	// public home sections
	SLIDER_POSTS   = 3
	FEATURED_POSTS = 4
	BENTO_POSTS    = 6

	// admin dashboard
	ANALYTICS_TOP_POSTS = 7
	ANALYTICS_LIST_SIZE = 5

	// detached view increments get their own deadline, never the request's
	VIEW_INCREMENT_TIMEOUT = 5 * time.Second
)
