package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/debugapi"
	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/game"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/observability"
	"github.com/annel0/voxel-sandbox/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию VOXEL_CONFIG)")
	frames := flag.Int("frames", 600, "число кадров сценария")
	dumpPath := flag.String("dump", "", "файл для дампа мешей после сценария")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ Неверный уровень логирования: %v", err)
	}
	logging.Configure(cfg.Logging.Dir, level)
	if err := logging.InitDefaultLogger("sandbox"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🧱 Запуск voxel-sandbox: seed=%d, радиус=%d, кадров=%d",
		cfg.World.Seed, cfg.World.ViewRadius, *frames)

	ctx := context.Background()
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Error("❌ Ошибка инициализации телеметрии: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Шина событий мира: лог, метрики и журнал для отладочного API
	bus := eventbus.NewMemoryBus(1024)
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(bus, nil); err != nil {
		logging.Warn("Лог событий не подключён: %v", err)
	}
	if err := eventbus.RegisterMetrics(bus, registry); err != nil {
		logging.Warn("Метрики шины событий не зарегистрированы: %v", err)
	}
	journal := eventbus.NewJournal(256)
	if _, err := journal.Attach(bus, eventbus.Filter{}); err != nil {
		logging.Warn("Журнал событий не подключён: %v", err)
	}

	sink := render.NewMemorySink(nil)
	session, err := game.NewSession(cfg, sink, game.WithRegisterer(registry), game.WithEventBus(bus))
	if err != nil {
		logging.Error("❌ Ошибка создания сессии: %v", err)
		os.Exit(1)
	}

	var api *debugapi.Server
	if cfg.Debug.Enabled {
		api = debugapi.NewServer(cfg.Debug.GetDebugPort(), session, registry, journal)
		api.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interrupted := runScript(session, *frames, sigCh)

	snap := session.Snapshot()
	logging.Info("✅ Сценарий завершён: кадров=%d, позиция=%v, чанков=%d, загрузок мешей=%d",
		snap.Frames, snap.Position, snap.World.Resident, snap.World.Uploads)

	if *dumpPath != "" {
		n, err := render.DumpMeshes(*dumpPath, sink)
		if err != nil {
			logging.Error("❌ Ошибка дампа мешей: %v", err)
		} else {
			logging.Info("💾 Сохранено %d мешей в %s", n, *dumpPath)
		}
	}

	// Отладочный API продолжает отвечать до сигнала
	if api != nil && !interrupted {
		logging.Info("🔧 Отладочный API: http://localhost:%d/api/world (Ctrl+C для выхода)", cfg.Debug.GetDebugPort())
		sig := <-sigCh
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	}

	if api != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := api.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Ошибка остановки отладочного API: %v", err)
		}
		cancel()
	}

	session.Close()
	if err := sink.Close(); err != nil {
		logging.Warn("Приёмник мешей: %v", err)
	}
	logging.Info("👋 Песочница остановлена")
}

// runScript прогоняет сценарную прогулку; возвращает true, если прерван сигналом
func runScript(session *game.Session, frames int, sigCh <-chan os.Signal) bool {
	for i := 0; i < frames; i++ {
		select {
		case sig := <-sigCh:
			logging.Info("📡 Получен сигнал %v, сценарий прерван на кадре %d", sig, i)
			return true
		default:
		}

		session.Frame(game.FixedStep, scriptedInput(i))

		if i > 0 && i%120 == 0 {
			snap := session.Snapshot()
			logging.Debug("Кадр %d: позиция=%v состояние=%s чанков=%d в очереди=%d",
				i, snap.Position, snap.State, snap.World.Resident, snap.World.Pending)
		}
	}
	return false
}

// scriptedInput ввод сценария: идём вперёд, периодически поворачиваем, прыгаем и бьём блок
func scriptedInput(frame int) game.Input {
	in := game.Input{Forward: 1}
	if frame%240 >= 200 {
		in.MouseDX = 4
	}
	if frame%90 == 45 {
		in.Jump = true
	}
	if frame%300 == 150 {
		in.Punch = true
		in.MouseDY = -30
	}
	return in
}
