package transport

import (
	"io"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPExchange(t *testing.T) {
	srv, err := ListenUDP("0")
	require.NoError(t, err)
	defer srv.Close()
	port := strconv.Itoa(srv.Addr().(*net.UDPAddr).Port)

	go func() {
		data, addr, err := srv.Receive()
		if err != nil {
			return
		}
		srv.Send(addr, append([]byte("R"), data...))
	}()

	client, err := NewUDPClient("127.0.0.1", port)
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Exchange([]byte("LST\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("RLST\n"), reply)
}

func TestUDPClientRejectsOversizeRequest(t *testing.T) {
	srv, err := ListenUDP("0")
	require.NoError(t, err)
	defer srv.Close()
	port := strconv.Itoa(srv.Addr().(*net.UDPAddr).Port)

	client, err := NewUDPClient("127.0.0.1", port)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Exchange(make([]byte, MaxClientDatagram+1))
	assert.ErrorIs(t, err, ErrOversizeDatagram)
}

func TestUDPServerDetectsOversizeRequest(t *testing.T) {
	srv, err := ListenUDP("0")
	require.NoError(t, err)
	defer srv.Close()
	port := strconv.Itoa(srv.Addr().(*net.UDPAddr).Port)

	conn, err := net.Dial("udp4", net.JoinHostPort("127.0.0.1", port))
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(make([]byte, MaxRequestDatagram+1))
	require.NoError(t, err)

	_, addr, err := srv.Receive()
	assert.ErrorIs(t, err, ErrOversizeDatagram)
	assert.NotNil(t, addr, "sender address available to answer with ERR")
}

func TestTCPRequestResponse(t *testing.T) {
	srv, err := ListenTCP("0")
	require.NoError(t, err)
	defer srv.Close()
	port := strconv.Itoa(srv.Addr().(*net.TCPAddr).Port)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := srv.Accept()
		if err != nil {
			return
		}
		// Request ends when the client half-closes.
		request, err := io.ReadAll(conn)
		if err != nil {
			conn.Close()
			return
		}
		Reply(conn, append([]byte("R"), request...))
	}()

	client, err := NewTCPClient("127.0.0.1", port)
	require.NoError(t, err)
	defer client.Close()

	// Larger than one chunk to exercise chunked writes.
	request := make([]byte, TCPChunkSize*3+17)
	for i := range request {
		request[i] = byte(i)
	}
	require.NoError(t, client.Send(request))

	reply, err := io.ReadAll(client.Conn())
	require.NoError(t, err)
	<-done
	require.Len(t, reply, len(request)+1)
	assert.Equal(t, byte('R'), reply[0])
	assert.Equal(t, request, reply[1:])
}
