// Package poller nudges the mailbridge app over HTTP on a fixed interval:
// one task triggers due schedule executions, the other drains pending Outlook
// webhook notifications.
//
// The two timers are independent and first runs are staggered so both tasks
// don't hit the app at the same moment on cold start. Overlapping runs of the
// same task are not prevented; the trigger endpoints are idempotent polls and
// tolerate duplicates.
package poller
