package testutil

// SampleSearchResponse is a /StopPoint/Search result for "Aldgate East"
const SampleSearchResponse = `{
  "$type": "Tfl.Api.Presentation.Entities.SearchResponse, Tfl.Api.Presentation.Entities",
  "query": "Aldgate East",
  "total": 1,
  "matches": [
    {
      "icsId": "1000003",
      "modes": ["bus", "tube"],
      "id": "940GZZLUADE",
      "name": "Aldgate East Underground Station",
      "lat": 51.515037,
      "lon": -0.072384
    }
  ]
}`

// SampleEmptySearchResponse is a search without matches
const SampleEmptySearchResponse = `{"query": "Nowhere", "total": 0, "matches": []}`

// SampleStopPointResponse is /StopPoint/940GZZLUADE
const SampleStopPointResponse = `{
  "naptanId": "940GZZLUADE",
  "commonName": "Aldgate East Underground Station",
  "stopType": "NaptanMetroStation",
  "modes": ["bus", "tube"],
  "lines": [
    {"id": "district", "name": "District", "type": "Line"},
    {"id": "hammersmith-city", "name": "Hammersmith & City", "type": "Line"},
    {"id": "15", "name": "15", "type": "Line"}
  ],
  "lineModeGroups": [
    {"modeName": "bus", "lineIdentifier": ["15"]},
    {"modeName": "tube", "lineIdentifier": ["district", "hammersmith-city"]}
  ],
  "children": []
}`

// SampleHubSearchResponse is a search that matches an interchange hub
const SampleHubSearchResponse = `{
  "query": "Kings Cross",
  "total": 1,
  "matches": [
    {"icsId": "1000129", "modes": ["bus", "national-rail", "tube"], "id": "HUBKGX", "name": "King's Cross & St Pancras International"}
  ]
}`

// SampleHubStopPointResponse is /StopPoint/HUBKGX with its child stations
const SampleHubStopPointResponse = `{
  "naptanId": "HUBKGX",
  "commonName": "King's Cross & St Pancras International",
  "stopType": "TransportInterchange",
  "modes": ["bus", "national-rail", "tube"],
  "lines": [
    {"id": "northern", "name": "Northern"},
    {"id": "victoria", "name": "Victoria"},
    {"id": "thameslink", "name": "Thameslink"}
  ],
  "lineModeGroups": [
    {"modeName": "national-rail", "lineIdentifier": ["thameslink"]},
    {"modeName": "tube", "lineIdentifier": ["northern", "victoria"]}
  ],
  "children": [
    {"naptanId": "910GKGX", "commonName": "King's Cross Rail Station", "modes": ["national-rail"]},
    {"naptanId": "940GZZLUKSX", "commonName": "King's Cross St. Pancras Underground Station", "modes": ["tube"],
     "children": [{"naptanId": "9400ZZLUKSX1", "modes": ["tube"]}]}
  ]
}`

// SampleArrivalsResponse is /Line/district,hammersmith-city/Arrivals/940GZZLUADE,
// deliberately out of order
const SampleArrivalsResponse = `[
  {
    "id": "-1051204719",
    "naptanId": "940GZZLUADE",
    "stationName": "Aldgate East Underground Station",
    "lineId": "district",
    "lineName": "District",
    "platformName": "Westbound - Platform 1",
    "direction": "inbound",
    "destinationNaptanId": "940GZZLUUPM",
    "destinationName": "Upminster Underground Station",
    "timeToStation": 684,
    "currentLocation": "At Whitechapel",
    "towards": "Upminster",
    "expectedArrival": "2024-03-01T08:11:24Z",
    "modeName": "tube"
  },
  {
    "id": "1790148162",
    "naptanId": "940GZZLUADE",
    "lineId": "hammersmith-city",
    "destinationName": "Barking Underground Station",
    "timeToStation": 45,
    "towards": "Barking",
    "expectedArrival": "2024-03-01T08:00:45Z",
    "modeName": "tube"
  },
  {
    "id": "-1998722371",
    "naptanId": "940GZZLUADE",
    "lineId": "district",
    "destinationName": "",
    "timeToStation": 125,
    "towards": "Upminster",
    "expectedArrival": "2024-03-01T08:02:05Z",
    "modeName": "tube"
  }
]`

// SampleStationRequest is the station-selection service payload
const SampleStationRequest = `{"station": "Aldgate East", "direction": "inbound", "updated_on": "2024-03-01T07:55:00Z"}`

// SampleErrorResponse is the TfL error envelope
const SampleErrorResponse = `{
  "$type": "Tfl.Api.Presentation.Entities.ApiError, Tfl.Api.Presentation.Entities",
  "httpStatusCode": 500,
  "httpStatus": "InternalServerError",
  "message": "Internal Server Error"
}`
