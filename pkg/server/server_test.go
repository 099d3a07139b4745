package server

import (
	"bufio"
	"context"
	"io/ioutil"
	"net"
	"os"
	"path"
	"strconv"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"

	"github.com/evgeny-myasishchev/xts-bank/pkg/bank"
)

func Test_Server_Serve(t *testing.T) {
	dir, err := ioutil.TempDir("", "bank-server-test")
	if !assert.NoError(t, err) {
		return
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	portFile := path.Join(dir, "port")

	ledger := bank.NewLedger()
	srv := New(
		WithLedger(ledger),
		WithAddress("127.0.0.1:0"),
		WithPortFile(portFile),
	)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- srv.ListenAndServe(ctx)
	}()

	var port int
	if !assert.Eventually(t, func() bool {
		buffer, err := ioutil.ReadFile(portFile)
		if err != nil {
			return false
		}
		port, err = strconv.Atoi(string(buffer))
		return err == nil && port > 0
	}, 5*time.Second, 10*time.Millisecond, "Port file should have been written") {
		cancel()
		return
	}

	conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(port))
	if !assert.NoError(t, err) {
		cancel()
		return
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	scanner := bufio.NewScanner(conn)
	name := "user-" + faker.Word()

	if !assert.True(t, scanner.Scan()) {
		cancel()
		return
	}
	assert.Equal(t, "What is your name?", scanner.Text())
	if _, err := conn.Write([]byte(name + "\nbalance\n")); !assert.NoError(t, err) {
		cancel()
		return
	}
	if !assert.True(t, scanner.Scan()) {
		cancel()
		return
	}
	assert.Equal(t, "Hi "+name, scanner.Text())
	if !assert.True(t, scanner.Scan()) {
		cancel()
		return
	}
	assert.Equal(t, "100", scanner.Text())

	assert.Equal(t, bank.InitialBalanceXTS, ledger.GetOrCreateUser(name).BalanceXTS())

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err, "Serve should stop cleanly on ctx cancel")
	case <-time.After(5 * time.Second):
		assert.Fail(t, "Serve should have returned after ctx cancel")
	}
}

func Test_Server_Serve_NoPortFile(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}

	srv := New(WithLedger(bank.NewLedger()))
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ctx, listener)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if !assert.NoError(t, err) {
		cancel()
		return
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	scanner := bufio.NewScanner(conn)
	if assert.True(t, scanner.Scan()) {
		assert.Equal(t, "What is your name?", scanner.Text())
	}

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "Serve should have returned after ctx cancel")
	}
}
