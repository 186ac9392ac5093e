// Package limiter implementa control de admision por ventana deslizante,
// con una secuencia de timestamps por usuario.
package limiter

import (
	"sync"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 5
)

// SlidingWindow admite o rechaza solicitudes segun cuantas hizo el mismo
// usuario dentro de la ventana. El estado por usuario vive en memoria durante
// todo el proceso; crece con usuarios distintos y nunca se desaloja.
type SlidingWindow struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	windows map[int64]*userWindow
}

type userWindow struct {
	mu     sync.Mutex
	stamps []time.Time // ordenados, el mas viejo primero
}

// New construye un limitador. window<=0 o max<=0 caen a los defaults.
func New(window time.Duration, max int) *SlidingWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}
	return &SlidingWindow{
		window:  window,
		max:     max,
		now:     time.Now,
		windows: make(map[int64]*userWindow),
	}
}

// NewWithClock permite inyectar el reloj en tests.
func NewWithClock(window time.Duration, max int, now func() time.Time) *SlidingWindow {
	l := New(window, max)
	if now != nil {
		l.now = now
	}
	return l
}

func (l *SlidingWindow) userWindow(userID int64) *userWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[userID]
	if !ok {
		w = &userWindow{}
		l.windows[userID] = w
	}
	return w
}

// Admit descarta los timestamps fuera de la ventana y decide: si quedan max
// o mas, rechaza sin registrar; si no, registra ahora y acepta. Las llamadas
// concurrentes del mismo usuario se serializan sobre su ventana.
func (l *SlidingWindow) Admit(userID int64) bool {
	now := l.now()
	w := l.userWindow(userID)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Solo salen los timestamps estrictamente anteriores al corte: uno
	// registrado hace exactamente una ventana todavia cuenta.
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(w.stamps) && w.stamps[i].Before(cutoff) {
		i++
	}
	w.stamps = w.stamps[i:]

	if len(w.stamps) >= l.max {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// WaitSeconds devuelve cuantos segundos enteros faltan para que el timestamp
// mas viejo salga de la ventana. 0 si la secuencia esta vacia.
func (l *SlidingWindow) WaitSeconds(userID int64) int {
	now := l.now()
	w := l.userWindow(userID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.stamps) == 0 {
		return 0
	}
	wait := l.window - now.Sub(w.stamps[0])
	if wait < 0 {
		return 0
	}
	return int(wait.Seconds())
}
