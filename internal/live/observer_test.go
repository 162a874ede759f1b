package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/yatube-service/internal/domain"
)

func TestObserver_PublishToPostSubscribers(t *testing.T) {
	o := NewCommentObserver()
	first, cancelFirst := o.Subscribe("p1")
	defer cancelFirst()
	other, cancelOther := o.Subscribe("p2")
	defer cancelOther()

	o.Publish(&domain.Comment{ID: "c1", PostID: "p1", Text: "hi"})

	select {
	case c := <-first:
		assert.Equal(t, "c1", c.ID)
	default:
		t.Fatal("comment was not delivered")
	}
	assert.Empty(t, other)
}

func TestObserver_Cancel(t *testing.T) {
	o := NewCommentObserver()
	ch, cancel := o.Subscribe("p1")
	require.Equal(t, 1, o.Subscribers("p1"))

	cancel()
	cancel()
	assert.Equal(t, 0, o.Subscribers("p1"))
	_, open := <-ch
	assert.False(t, open)

	// После отписки публикация не паникует
	o.Publish(&domain.Comment{PostID: "p1"})
}

func TestObserver_SlowSubscriberSkipped(t *testing.T) {
	o := NewCommentObserver()
	ch, cancel := o.Subscribe("p1")
	defer cancel()

	for i := 0; i < cap(ch)+5; i++ {
		o.Publish(&domain.Comment{PostID: "p1"})
	}
	assert.Len(t, ch, cap(ch))
}
