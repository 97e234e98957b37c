package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownComponent запрошен уровень для компонента без логгера
var ErrUnknownComponent = errors.New("логгер компонента не создан")

// LoggerManager хранит по одному логгеру на компонент (world, worker, render, game, api, events)
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает общий менеджер процесса
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if ok {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Другая горутина могла успеть создать логгер
	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер компонента %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger как GetLogger, но при ошибке файла отдаёт логгер только с консолью
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}

	settingsMu.RLock()
	level := consoleLevel
	settingsMu.RUnlock()

	fallback := &Logger{
		component:       component,
		consoleLogger:   current().consoleLogger,
		minConsoleLevel: level,
		minFileLevel:    ERROR,
	}
	fallback.Warn("Файл логов недоступен, только консоль: %v", err)
	return fallback
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("закрытие логгера %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// Components возвращает имена компонентов с созданными логгерами, по алфавиту
func (lm *LoggerManager) Components() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetLogLevel меняет пороги уже созданного логгера. Вызывать до начала работы компонента.
func (lm *LoggerManager) SetLogLevel(component string, console, file LogLevel) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	logger, ok := lm.loggers[component]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, component)
	}
	logger.minConsoleLevel = console
	logger.minFileLevel = file
	return nil
}

// GetComponentLogger логгер компонента из общего менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger  { return GetComponentLogger("world") }
func GetWorkerLogger() *Logger { return GetComponentLogger("worker") }
func GetRenderLogger() *Logger { return GetComponentLogger("render") }
func GetGameLogger() *Logger   { return GetComponentLogger("game") }
func GetAPILogger() *Logger    { return GetComponentLogger("api") }
