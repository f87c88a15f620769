package account

import "encoding/json"

// apiResponse is the envelope every account service endpoint returns.
// The interesting payload lives in Data; Code is the service-level status
// (200 on success) which is independent of the HTTP status code.
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// baseURLData is the payload of the getUrlByEmail endpoint.
type baseURLData struct {
	URL string `json:"url"`
}

// UserData is the session payload returned by a successful code login.
// It is persisted verbatim as entry data and later used by the host
// integration to talk to the cloud on the account's behalf.
type UserData struct {
	UID         int    `json:"uid" yaml:"uid"`
	TokenType   string `json:"tokentype" yaml:"token_type"`
	Token       string `json:"token" yaml:"token"`
	RRUID       string `json:"rruid" yaml:"rruid"`
	Region      string `json:"region" yaml:"region"`
	CountryCode string `json:"countrycode" yaml:"country_code"`
	Country     string `json:"country" yaml:"country"`
	Nickname    string `json:"nickname" yaml:"nickname"`
	RRiot       *RRiot `json:"rriot,omitempty" yaml:"rriot,omitempty"`
}

// RRiot is the IoT connection block inside UserData. The single-letter
// JSON keys are what the service actually sends.
type RRiot struct {
	UserID    string         `json:"u" yaml:"user_id"`
	Secret    string         `json:"s" yaml:"secret"`
	HashKey   string         `json:"h" yaml:"hash_key"`
	Key       string         `json:"k" yaml:"key"`
	Endpoints RRiotEndpoints `json:"r" yaml:"endpoints"`
}

// RRiotEndpoints lists the regional service endpoints for a session.
type RRiotEndpoints struct {
	Region string `json:"r" yaml:"region"`
	API    string `json:"a" yaml:"api"`
	MQTT   string `json:"m" yaml:"mqtt"`
	Log    string `json:"l" yaml:"log"`
}
