package world

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-sandbox/internal/logging"
)

// Executor выполняет задачи генерации вне главного потока
type Executor interface {
	// Submit ставит задачу в очередь; false: исполнитель остановлен или переполнен
	Submit(task func()) bool
	// Shutdown прекращает приём задач и ждёт завершения не дольше timeout.
	// Возвращает false, если воркеры не успели остановиться.
	Shutdown(timeout time.Duration) bool
}

// WorkerPool пул из фиксированного числа горутин
type WorkerPool struct {
	tasks   chan func()
	quit    chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	running atomic.Int32
	logger  *logging.Logger
}

// NewWorkerPool запускает workers горутин; workers <= 0: по числу CPU.
// queueSize ограничивает число задач, ожидающих свободного воркера.
func NewWorkerPool(workers, queueSize int, logger *logging.Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = logging.GetWorkerLogger()
	}

	p := &WorkerPool{
		tasks:  make(chan func(), queueSize),
		quit:   make(chan struct{}),
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("🧵 Пул воркеров запущен: %d горутин, очередь %d", workers, queueSize)
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			// Задачи, оставшиеся в очереди после остановки, не выполняются
			select {
			case <-p.quit:
				return
			default:
			}
			p.running.Add(1)
			p.run(id, task)
			p.running.Add(-1)
		}
	}
}

func (p *WorkerPool) run(id int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Паника в воркере %d: %v", id, r)
		}
	}()
	task()
}

// Submit ставит задачу без блокировки
func (p *WorkerPool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		p.logger.Warn("Очередь воркеров переполнена, задача отклонена")
		return false
	}
}

// Running возвращает число задач, выполняющихся прямо сейчас
func (p *WorkerPool) Running() int {
	return int(p.running.Load())
}

// Shutdown останавливает пул и ждёт воркеров не дольше timeout
func (p *WorkerPool) Shutdown(timeout time.Duration) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return true
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ Пул воркеров остановлен")
		return true
	case <-time.After(timeout):
		p.logger.Warn("⏱️ Пул воркеров не остановился за %v, незавершённые задачи брошены", timeout)
		return false
	}
}

// InlineExecutor выполняет задачи синхронно в вызывающей горутине
type InlineExecutor struct {
	closed atomic.Bool
}

// Submit выполняет задачу немедленно
func (e *InlineExecutor) Submit(task func()) bool {
	if e.closed.Load() {
		return false
	}
	task()
	return true
}

// Shutdown запрещает дальнейшие задачи
func (e *InlineExecutor) Shutdown(time.Duration) bool {
	e.closed.Store(true)
	return true
}
