/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package mpsc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueuePushPop(t *testing.T) {
	q := New()
	require.True(t, q.Empty())
	require.Nil(t, q.Pop())

	q.Push("a")
	q.Push("b")
	require.False(t, q.Empty())

	require.Equal(t, "a", q.Pop())
	require.Equal(t, "b", q.Pop())
	require.Nil(t, q.Pop())
	require.True(t, q.Empty())
}

func TestQueueConcurrentPush(t *testing.T) {
	const producers = 8
	const perProducer = 1000

	q := New()

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()

	var count int
	for q.Pop() != nil {
		count++
	}
	require.Equal(t, producers*perProducer, count)
}
