// Package services implements the launcher's network collaborators.
//
// # Weather
//
// [WeatherService] reads the current temperature from the open-meteo forecast API
// (current=temperature_2m) and rounds it to whole degrees Celsius. The home screen treats the
// temperature as optional: [WeatherService.Current] returns nil on any failure and logs the cause,
// while [WeatherService.Fetch] exposes the error for the CLI.
//
// # Error Handling
//
// Request failures wrap [shared.ErrAPIRequest]; responses without a current temperature wrap
// [shared.ErrInvalidInput].
package services
