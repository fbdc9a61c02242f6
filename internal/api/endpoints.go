package api

const (
	// BaseURL is the base URL for the TfL unified API
	BaseURL = "https://api.tfl.gov.uk"

	// DefaultProbeURL is requested to tell "offline" from "upstream failing"
	DefaultProbeURL = "https://api.tfl.gov.uk/"

	// EndpointStopPointSearch searches stops by name
	// Params: query, modes, maxResults
	EndpointStopPointSearch = "/StopPoint/Search"

	// EndpointStopPoint returns one stop point with its lines and children
	// Path: /StopPoint/{id}
	EndpointStopPoint = "/StopPoint/"

	// EndpointLineArrivals returns predictions for lines at a stop
	// Path: /Line/{lineIds}/Arrivals/{stopPointId}, params: direction
	EndpointLineArrivals = "/Line/%s/Arrivals/%s"

	// DefaultMode is the rail mode the board shows
	DefaultMode = "tube"

	// userAgent is accepted by TfL; some edge nodes reject the Go default
	userAgent = "curl/7.54.1"
)
