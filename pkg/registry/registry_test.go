package registry

import (
	"testing"

	"github.com/quietroom/core/pkg/ids"
)

func TestAddAndLookup(t *testing.T) {
	reg := New()
	room := ids.New()
	socket := ids.New()
	doctor := ids.New()

	reg.Add(Member{SocketID: socket, RoomID: room, DoctorID: doctor, Role: RoleDoctor, Language: "en"})

	m, err := reg.BySocket(socket)
	if err != nil {
		t.Fatalf("BySocket: %v", err)
	}
	if m.RoomID != room || m.DoctorID != doctor || m.Role != RoleDoctor {
		t.Fatalf("unexpected member: %+v", m)
	}
	if reg.RoomCount(room) != 1 {
		t.Fatalf("expected room count 1, got %d", reg.RoomCount(room))
	}
}

func TestRemove(t *testing.T) {
	reg := New()
	room := ids.New()
	socket := ids.New()
	reg.Add(Member{SocketID: socket, RoomID: room, Role: RoleDoctor})

	gotRoom, ok := reg.Remove(socket)
	if !ok || gotRoom != room {
		t.Fatalf("Remove: got (%v, %v), want (%v, true)", gotRoom, ok, room)
	}
	if _, err := reg.BySocket(socket); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if reg.RoomCount(room) != 0 {
		t.Fatalf("expected room to be emptied, got count %d", reg.RoomCount(room))
	}

	if _, ok := reg.Remove(socket); ok {
		t.Fatalf("expected second Remove to report not found")
	}
}

func TestPeer(t *testing.T) {
	reg := New()
	room := ids.New()
	patientSocket, doctorSocket := ids.New(), ids.New()
	reg.Add(Member{SocketID: patientSocket, RoomID: room, Role: RolePatient})
	reg.Add(Member{SocketID: doctorSocket, RoomID: room, Role: RoleDoctor})

	peer, err := reg.Peer(room, patientSocket)
	if err != nil {
		t.Fatalf("Peer: %v", err)
	}
	if peer.SocketID != doctorSocket {
		t.Fatalf("expected peer %v, got %v", doctorSocket, peer.SocketID)
	}

	if _, err := reg.Peer(room, doctorSocket); err != nil {
		t.Fatalf("Peer from doctor side: %v", err)
	}
}

func TestPeerAloneInRoom(t *testing.T) {
	reg := New()
	room := ids.New()
	socket := ids.New()
	reg.Add(Member{SocketID: socket, RoomID: room, Role: RolePatient})

	if _, err := reg.Peer(room, socket); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound when alone in room, got %v", err)
	}
}

func TestRoomSnapshotIsolated(t *testing.T) {
	reg := New()
	room := ids.New()
	reg.Add(Member{SocketID: ids.New(), RoomID: room, Role: RolePatient})

	members := reg.Room(room)
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}

	reg.Add(Member{SocketID: ids.New(), RoomID: room, Role: RoleDoctor})
	if len(members) != 1 {
		t.Fatalf("previously-returned slice should not observe later mutation")
	}
	if reg.RoomCount(room) != 2 {
		t.Fatalf("expected updated room count 2, got %d", reg.RoomCount(room))
	}
}

func TestReconnectReplacesSocket(t *testing.T) {
	reg := New()
	room := ids.New()
	doctor := ids.New()
	oldSocket, newSocket := ids.New(), ids.New()

	reg.Add(Member{SocketID: oldSocket, RoomID: room, DoctorID: doctor, Role: RoleDoctor})
	reg.Remove(oldSocket)
	reg.Add(Member{SocketID: newSocket, RoomID: room, DoctorID: doctor, Role: RoleDoctor})

	if reg.RoomCount(room) != 1 {
		t.Fatalf("expected single member after reconnect, got %d", reg.RoomCount(room))
	}
	if _, err := reg.BySocket(oldSocket); err != ErrNotFound {
		t.Fatalf("expected old socket gone, got %v", err)
	}
}

func TestPeersExcept(t *testing.T) {
	reg := New()
	room := ids.New()
	patientSocket, doctorSocket := ids.New(), ids.New()
	reg.Add(Member{SocketID: patientSocket, RoomID: room, Role: RolePatient})
	reg.Add(Member{SocketID: doctorSocket, RoomID: room, Role: RoleDoctor})

	peers := reg.PeersExcept(room, patientSocket)
	if len(peers) != 1 || peers[0].SocketID != doctorSocket {
		t.Fatalf("unexpected peers: %+v", peers)
	}

	if peers := reg.PeersExcept(room, ids.New()); len(peers) != 2 {
		t.Fatalf("expected both members returned for an unrelated socket, got %d", len(peers))
	}
}

func TestBothPresent(t *testing.T) {
	reg := New()
	room := ids.New()
	if reg.BothPresent(room) {
		t.Fatalf("expected false for empty room")
	}

	patientSocket := ids.New()
	reg.Add(Member{SocketID: patientSocket, RoomID: room, Role: RolePatient})
	if reg.BothPresent(room) {
		t.Fatalf("expected false with only a patient present")
	}

	reg.Add(Member{SocketID: ids.New(), RoomID: room, Role: RoleDoctor})
	if !reg.BothPresent(room) {
		t.Fatalf("expected true once both roles are present")
	}
}
