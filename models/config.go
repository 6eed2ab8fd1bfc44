package models

// ConfigurationDocument is the whole operator-edited configuration. It is replaced wholesale on
// every write.
type ConfigurationDocument struct {
	PageSettings    *PageSettings    `json:"pageSettings"`
	MonitorSettings *MonitorSettings `json:"monitorSettings"`
}

// PageSettings describe the public status page.
type PageSettings struct {
	Title string        `json:"title,omitempty"`
	Links []Link        `json:"links,omitempty"`
	Group MonitorGroups `json:"group,omitempty"`

	Extra Extras `json:"-"`
}

type plainPageSettings PageSettings

func (p PageSettings) MarshalJSON() ([]byte, error) {
	return encodeObject(plainPageSettings(p), p.Extra)
}

func (p *PageSettings) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var plain plainPageSettings
	extra, err := decodeObject(data, &plain)
	if err != nil {
		return err
	}
	*p = PageSettings(plain)
	p.Extra = extra
	return nil
}

type Link struct {
	Link      string `json:"link"`
	Label     string `json:"label,omitempty"`
	Highlight *bool  `json:"highlight,omitempty"`

	Extra Extras `json:"-"`
}

type plainLink Link

func (l Link) MarshalJSON() ([]byte, error) {
	return encodeObject(plainLink(l), l.Extra)
}

func (l *Link) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var plain plainLink
	extra, err := decodeObject(data, &plain)
	if err != nil {
		return err
	}
	*l = Link(plain)
	l.Extra = extra
	return nil
}

// MonitorSettings is consumed by the monitor execution engine.
type MonitorSettings struct {
	KVWriteCooldownMinutes *int            `json:"kvWriteCooldownMinutes,omitempty"`
	Monitors               []MonitorTarget `json:"monitors"`
	Notification           *Notification   `json:"notification,omitempty"`

	Extra Extras `json:"-"`
}

type plainMonitorSettings MonitorSettings

func (s MonitorSettings) MarshalJSON() ([]byte, error) {
	return encodeObject(plainMonitorSettings(s), s.Extra)
}

func (s *MonitorSettings) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var plain plainMonitorSettings
	extra, err := decodeObject(data, &plain)
	if err != nil {
		return err
	}
	*s = MonitorSettings(plain)
	s.Extra = extra
	return nil
}

type Notification struct {
	AppriseAPIServer string `json:"appriseApiServer,omitempty"`
	RecipientURL     string `json:"recipientUrl,omitempty"`
	TimeZone         string `json:"timeZone,omitempty"`
	GracePeriod      *int   `json:"gracePeriod,omitempty"`

	Extra Extras `json:"-"`
}

type plainNotification Notification

func (n Notification) MarshalJSON() ([]byte, error) {
	return encodeObject(plainNotification(n), n.Extra)
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var plain plainNotification
	extra, err := decodeObject(data, &plain)
	if err != nil {
		return err
	}
	*n = Notification(plain)
	n.Extra = extra
	return nil
}
