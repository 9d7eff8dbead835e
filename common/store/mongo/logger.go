package mongo

import "github.com/rs/zerolog"

// logger adapts zerolog to the driver's LogSink.
type logger struct {
	log zerolog.Logger
}

func (l *logger) Info(level int, message string, keysAndValues ...interface{}) {
	var event *zerolog.Event
	switch level {
	case 1:
		event = l.log.Info()
	case 2:
		event = l.log.Debug()
	default:
		event = l.log.Trace()
	}
	l.withFields(event, keysAndValues).Msg(message)
}

func (l *logger) Error(err error, message string, keysAndValues ...interface{}) {
	l.withFields(l.log.Error().Err(err), keysAndValues).Msg(message)
}

func (l *logger) withFields(event *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			event = event.Interface(key, keysAndValues[i+1])
		}
	}
	if len(keysAndValues)%2 != 0 {
		if key, ok := keysAndValues[len(keysAndValues)-1].(string); ok {
			event = event.Interface(key, nil)
		}
	}
	return event
}
