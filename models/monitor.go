package models

// MonitorTarget is a single health check definition. ID joins the target to the status history
// kept by the execution engine, so it must stay unique across the document.
type MonitorTarget struct {
	ID                       string            `json:"id"`
	Name                     string            `json:"name,omitempty"`
	Method                   string            `json:"method"`
	Target                   string            `json:"target"`
	Tooltip                  string            `json:"tooltip,omitempty"`
	StatusPageLink           string            `json:"statusPageLink,omitempty"`
	HideLatencyChart         *bool             `json:"hideLatencyChart,omitempty"`
	ExpectedCodes            []int             `json:"expectedCodes,omitempty"`
	Timeout                  *int              `json:"timeout,omitempty"`
	Headers                  map[string]string `json:"headers,omitempty"`
	Body                     string            `json:"body,omitempty"`
	ResponseKeyword          string            `json:"responseKeyword,omitempty"`
	ResponseForbiddenKeyword string            `json:"responseForbiddenKeyword,omitempty"`
	CheckLocationWorkerRoute string            `json:"checkLocationWorkerRoute,omitempty"`

	Extra Extras `json:"-"`
}

type plainMonitorTarget MonitorTarget

func (m MonitorTarget) MarshalJSON() ([]byte, error) {
	return encodeObject(plainMonitorTarget(m), m.Extra)
}

func (m *MonitorTarget) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var plain plainMonitorTarget
	extra, err := decodeObject(data, &plain)
	if err != nil {
		return err
	}
	*m = MonitorTarget(plain)
	m.Extra = extra
	return nil
}

// MethodTCPPing opens a TCP connection to a host:port target instead of issuing a request.
const MethodTCPPing = "TCP_PING"

// MethodHTTP lets the execution engine pick its default HTTP verb.
const MethodHTTP = "HTTP"

var checkMethods = map[string]struct{}{
	"GET":         {},
	"HEAD":        {},
	"POST":        {},
	"PUT":         {},
	"PATCH":       {},
	"DELETE":      {},
	"OPTIONS":     {},
	"CONNECT":     {},
	"TRACE":       {},
	MethodHTTP:    {},
	MethodTCPPing: {},
}

// IsCheckMethod reports whether method is one the execution engine knows how to run.
func IsCheckMethod(method string) bool {
	_, ok := checkMethods[method]
	return ok
}
