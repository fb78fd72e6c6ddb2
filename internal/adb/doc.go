// Package adb owns the transport to the target Android device.
//
// Ownership boundary:
// - command runner abstraction (local exec, remote SSH host)
// - the Device controller: shell, remote SQLite, files, apps, settings
// - bounded readiness polling
package adb
