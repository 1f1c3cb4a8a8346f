// Package weather is a client for the OpenWeatherMap APIs used by the
// weather tools: ZIP geocoding, current conditions and the One Call daily
// forecast.
//
// Every request is a single attempt. Transport failures and non-2xx
// responses are returned as errors (see apiclient.HTTPError); a 2xx body
// whose "cod" field is not 200 is returned as *APIError.
package weather
