package platform

import "time"

var (
	appVersion   = "0.0.0"
	appBuildTime = "1970-01-01"
	appStartTime = time.Now()
)

// SetAppManifest is called once from main with ldflags-injected values;
// the getters feed the health endpoint and the --version flag.
func SetAppManifest(version, buildTime string, startTime time.Time) {
	appVersion = version
	appBuildTime = buildTime
	appStartTime = startTime
}

func GetAppVersion() string {
	return appVersion
}

func GetAppBuildTime() string {
	return appBuildTime
}

func GetAppStartTime() time.Time {
	return appStartTime
}
