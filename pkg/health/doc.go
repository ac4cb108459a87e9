// Package health provides HTTP handlers for health probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] concurrently and answers
// 503 when any of them fails.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "uploads":  lib.Healthcheck(),
//	    "settings": store.Healthcheck(),
//	    "jobs":     job.Healthcheck(manager),
//	}))
//
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json:
//
//	{"status":"unhealthy","checks":{"uploads":{"status":"unhealthy","error":"..."}}}
//
// Checks share one timeout (5s by default, see [WithTimeout]). A check that
// does not return in time is reported with [ErrCheckTimeout].
package health
