package neo4j

import (
	"fmt"

	neo4jlog "github.com/neo4j/neo4j-go-driver/v5/neo4j/log"
	"github.com/yaoapp/kun/log"
)

// driverLogger routes the driver's internal logging into kun/log,
// tagging every entry with the target database
type driverLogger struct {
	target string
}

func newDriverLogger(target string) neo4jlog.Logger {
	return &driverLogger{target: target}
}

func (l *driverLogger) fields(name, id string) log.F {
	return log.F{"component": name, "id": id, "target": l.target}
}

// Error implements neo4j log.Logger
func (l *driverLogger) Error(name, id string, err error) {
	log.With(l.fields(name, id)).Error("[Neo4j] %s", err.Error())
}

// Warnf implements neo4j log.Logger
func (l *driverLogger) Warnf(name, id string, msg string, args ...any) {
	log.With(l.fields(name, id)).Warn("[Neo4j] %s", fmt.Sprintf(msg, args...))
}

// Infof implements neo4j log.Logger
func (l *driverLogger) Infof(name, id string, msg string, args ...any) {
	log.With(l.fields(name, id)).Info("[Neo4j] %s", fmt.Sprintf(msg, args...))
}

// Debugf implements neo4j log.Logger, driver debug output is only wanted at trace level
func (l *driverLogger) Debugf(name, id string, msg string, args ...any) {
	if log.GetLevel() < log.TraceLevel {
		return
	}
	log.With(l.fields(name, id)).Trace("[Neo4j] %s", fmt.Sprintf(msg, args...))
}
