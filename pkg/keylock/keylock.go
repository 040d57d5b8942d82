// Package keylock реализует набор мьютексов по ключу.
// Используется для гарантии «не более одного запуска индексации на видео».
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock выдает мьютекс по ключу. Запись о ключе освобождается,
// когда последний держатель вызывает Unlock.
type KeyLock struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

func New() *KeyLock {
	return &KeyLock{entries: make(map[int64]*entry)}
}

// Lock блокирует мьютекс ключа, при необходимости создавая его.
func (k *KeyLock) Lock(key int64) {
	k.mu.Lock()
	en, ok := k.entries[key]
	if !ok {
		en = &entry{}
		k.entries[key] = en
	}
	en.refs++
	k.mu.Unlock()

	en.mu.Lock()
}

// TryLock пытается захватить мьютекс ключа без ожидания.
func (k *KeyLock) TryLock(key int64) bool {
	k.mu.Lock()
	en, ok := k.entries[key]
	if !ok {
		en = &entry{}
		k.entries[key] = en
	}
	en.refs++
	k.mu.Unlock()

	if en.mu.TryLock() {
		return true
	}

	k.mu.Lock()
	en.refs--
	if en.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
	return false
}

// Unlock освобождает мьютекс ключа и удаляет запись, если держателей не осталось.
func (k *KeyLock) Unlock(key int64) {
	k.mu.Lock()
	en, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("keylock: unlock of unlocked key")
	}
	en.refs--
	if en.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	en.mu.Unlock()
}
