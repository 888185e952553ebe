// Package api implements the HTTP boundary layer over the task core:
// submitting synthesis jobs and polling task status.
package api
