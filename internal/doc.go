// internal is internal packages for statwatch.
//
// The pipeline packages (fetch, parser, detect, store, notify) do not depend on each other.
// The watcher package connects them through small interfaces like detect.Store and notify.Notifier.
//
// The swerr package, the classify package, and the testutil package are exception cases for this rule.
// These packages are used by other packages.
package internal
