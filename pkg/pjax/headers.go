package pjax

// Request headers.
const (
	HeaderPJAX          = "X-PJAX"
	HeaderPJAXContainer = "X-PJAX-Container"
	HeaderRequestedWith = "X-Requested-With"
)

// Response headers.
const (
	HeaderPJAXVersion = "X-PJAX-Version"
	HeaderPJAXURL     = "X-PJAX-URL"
)

// QueryParam is the cache-busting query parameter PJAX clients append.
const QueryParam = "_pjax"
