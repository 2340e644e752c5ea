// Package logger — логирование с префиксом сервиса и асинхронной записью:
// горячий путь запроса не ждёт вывода. Дополнительно умеет логировать
// длительность вызовов (медленные запросы к БД и хендлеры).
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

const queueSize = 8192

// slowThreshold — при LOG_LEVEL=info длительности короче порога не логируются.
const slowThreshold = 100 * time.Millisecond

type level int

const (
	levelDebug level = iota
	levelInfo
)

var (
	prefix   string
	logLevel = levelInfo
	queue    chan string
	once     sync.Once
)

func startWorker() {
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "trace":
		logLevel = levelDebug
	default:
		logLevel = levelInfo
	}
	queue = make(chan string, queueSize)
	go func() {
		for msg := range queue {
			log.Print(msg)
		}
	}()
}

func enqueue(msg string) {
	once.Do(startWorker)
	select {
	case queue <- msg:
	default:
		// Очередь переполнена — сообщение теряется, но запрос не блокируется
	}
}

// SetPrefix задаёт префикс для всех последующих логов (например "api").
func SetPrefix(p string) {
	prefix = p
}

func tag() string {
	if prefix == "" {
		return ""
	}
	return "[" + prefix + "] "
}

// Info пишет сообщение с префиксом (асинхронно).
func Info(v ...any) {
	enqueue(tag() + fmt.Sprint(v...))
}

// Infof форматирует и пишет с префиксом (асинхронно).
func Infof(format string, v ...any) {
	enqueue(tag() + fmt.Sprintf(format, v...))
}

// Error пишет ошибку с префиксом (асинхронно).
func Error(v ...any) {
	enqueue(tag() + "ERROR: " + fmt.Sprint(v...))
}

// Errorf форматирует ошибку с префиксом (асинхронно).
func Errorf(format string, v ...any) {
	enqueue(tag() + "ERROR: " + fmt.Sprintf(format, v...))
}

// LogDuration логирует имя функции и её длительность в миллисекундах.
// При LOG_LEVEL=info — только вызовы дольше slowThreshold, при debug — все.
func LogDuration(fn string, start time.Time) {
	elapsed := time.Since(start)
	if logLevel == levelDebug || elapsed >= slowThreshold {
		enqueue(fmt.Sprintf("%sfn=%s duration_ms=%d", tag(), fn, elapsed.Milliseconds()))
	}
}

// DeferLogDuration — для defer: defer logger.DeferLogDuration("item.List", time.Now())().
func DeferLogDuration(fn string, start time.Time) func() {
	return func() { LogDuration(fn, start) }
}
