package internal

import (
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// AppName and Version identify the gateway in response envelopes and the
// Server header.
const (
	AppName = "editgate"
	Version = "0.1.0"
)

// Envelope is the default JSON response shape.
type Envelope struct {
	Code int     `json:"code"`
	Data any     `json:"data,omitempty"`
	Msg  string  `json:"msg,omitempty"`
	Env  EnvInfo `json:"env"`
}

// EnvInfo describes the serving process, attached to every JSON response.
type EnvInfo struct {
	App     AppInfo `json:"app"`
	Host    string  `json:"host"`
	Lang    string  `json:"lang,omitempty"`
	Machine string  `json:"machine,omitempty"`
	Session string  `json:"session"`
}

// AppInfo names the serving application.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// envBuilder assembles per-request EnvInfo. The session id is fixed for
// the process lifetime so clients can detect restarts; language is matched
// per request against the configured list.
type envBuilder struct {
	hostName string
	machine  string
	session  string
	matcher  language.Matcher
	fallback string
}

func newEnvBuilder(hostName string, languages []string) *envBuilder {
	b := &envBuilder{
		hostName: hostName,
		session:  uuid.NewString(),
	}
	if machine, err := os.Hostname(); err == nil {
		b.machine = machine
	}

	tags := make([]language.Tag, 0, len(languages))
	for _, lang := range languages {
		if tag, err := language.Parse(lang); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		b.matcher = language.NewMatcher(tags)
		b.fallback = tags[0].String()
	}
	return b
}

// build resolves the response language from the Accept-Language header.
func (b *envBuilder) build(r *http.Request) EnvInfo {
	info := EnvInfo{
		App:     AppInfo{Name: AppName, Version: Version},
		Host:    b.hostName,
		Machine: b.machine,
		Session: b.session,
	}
	if b.matcher != nil {
		tag, _ := language.MatchStrings(b.matcher, r.Header.Get("Accept-Language"))
		info.Lang = tag.String()
		if info.Lang == "und" {
			info.Lang = b.fallback
		}
	}
	return info
}
