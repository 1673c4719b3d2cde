// Package reporting forwards server errors and panics to Rollbar.
package reporting

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"portalku_backend/internals/configs"
)

var enabled bool

// Init enables Rollbar when ROLLBAR_TOKEN is set.
func Init(codeVersion string) {
	token := configs.GetEnv("ROLLBAR_TOKEN")
	if token == "" {
		log.Println("[ROLLBAR] token kosong, error reporting nonaktif")
		rollbar.SetEnabled(false)
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(configs.GetEnv("APP_ENV", "development"))
	rollbar.SetServerHost(configs.String("APP_NAME"))
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(true)
	enabled = true
	log.Println("[ROLLBAR] ✅ error reporting aktif")
}

func Enabled() bool { return enabled }

// Person identifies the caller attached to a report.
type Person struct {
	ID    string
	Name  string
	Email string
}

func Error(err error, extras map[string]interface{}, who *Person) {
	if !enabled || err == nil {
		return
	}
	if who != nil {
		rollbar.SetPerson(who.ID, who.Name, who.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Error(err, extras)
}

func Critical(v interface{}, extras map[string]interface{}) {
	if !enabled {
		return
	}
	rollbar.Critical(v, extras)
}

// Close flushes queued reports; call on shutdown.
func Close() {
	if enabled {
		rollbar.Close()
	}
}
