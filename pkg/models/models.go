package models

import (
	"time"
)

// LeaseView is the JSON shape of a parsed lease served by the API
type LeaseView struct {
	IP                 string     `json:"ip"`
	IPSort             uint32     `json:"ipSort"`
	MAC                string     `json:"mac"`
	HardwareType       string     `json:"hardwareType,omitempty"`
	Info               *OUIEntry  `json:"info,omitempty"`
	UID                string     `json:"uid,omitempty"`
	Hostname           string     `json:"hostname,omitempty"`
	ClientHostname     string     `json:"clientHostname,omitempty"`
	Starts             *time.Time `json:"starts,omitempty"`
	Ends               *time.Time `json:"ends,omitempty"`
	Remain             string     `json:"remain"`
	Active             bool       `json:"active"`
	Abandoned          bool       `json:"abandoned"`
	Linux              bool       `json:"linux"`
	BindingState       string     `json:"bindingState,omitempty"`
	NextBindingState   string     `json:"nextBindingState,omitempty"`
	RewindBindingState string     `json:"rewindBindingState,omitempty"`
	Warning            string     `json:"warning,omitempty"`
}

// OUIEntry represents MAC address vendor information
type OUIEntry struct {
	OUI         string `json:"oui"`
	Private     bool   `json:"isPrivate"`
	Company     string `json:"companyName"`
	Address     string `json:"companyAddress"`
	CountryCode string `json:"countryCode"`
	BlockSize   string `json:"assignmentBlockSize"`
	Created     string `json:"dateCreated"`
	Updated     string `json:"dateUpdated"`
}

// ClientEntry is one client remembered by the history store
type ClientEntry struct {
	MAC            string    `json:"mac"`
	IP             string    `json:"ip"`
	Hostname       string    `json:"hostname,omitempty"`
	ClientHostname string    `json:"clientHostname,omitempty"`
	LastEnds       time.Time `json:"lastEnds"`
	Linux          bool      `json:"linux"`
	LastSeen       time.Time `json:"lastSeen"`
}
